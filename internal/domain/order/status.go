package order

import (
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// Status represents the lifecycle stage of an order
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var (
	ErrInvalidStatus     = shared.NewDomainError("INVALID_STATUS", "Invalid order status")
	ErrIllegalTransition = shared.NewDomainError("ILLEGAL_STATUS_TRANSITION", "Order cannot move to the requested status")
)

// transitions lists the legal successors of every non-terminal status.
// cancelled is reachable from every non-terminal state.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered, StatusCancelled},
	StatusDelivered: nil,
	StatusCancelled: nil,
}

// AllStatuses returns the statuses in lifecycle order
func AllStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}
}

// ParseStatus converts raw input to a Status, rejecting anything outside the enumeration
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.NewDomainError(ErrInvalidStatus.Code, "Invalid order status: "+raw)
	}
	return s, nil
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// IsValid reports whether s is one of the five known statuses
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed
func (s Status) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

// CanTransitionTo reports whether target is a legal successor of s
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// NextStatuses returns the legal successors of s
func (s Status) NextStatuses() []Status {
	next := make([]Status, len(transitions[s]))
	copy(next, transitions[s])
	return next
}
