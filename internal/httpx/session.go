package httpx

import (
	"net/http"

	"github.com/google/uuid"
)

const sessionCookie = "session_id"

// sessionID returns the request's session id, minting one (and setting the
// cookie) for first-time visitors. The identity system behind it is not
// ours; any opaque stable id works.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
