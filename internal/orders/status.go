package orders

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCanceled   Status = "canceled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusProcessing: true, StatusCanceled: true},
	StatusProcessing: {StatusShipped: true, StatusCanceled: true},
	StatusShipped:    {StatusDelivered: true, StatusCanceled: true},
	StatusDelivered:  {},
	StatusCanceled:   {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Terminal reports whether no further transition is possible.
func Terminal(s Status) bool {
	return len(validNext[s]) == 0
}
