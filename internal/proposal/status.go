package proposal

import (
	"fmt"
	"time"
)

// CanTransition reports whether from -> to is allowed. Only a pending proposal
// may move, and only to a terminal status.
func CanTransition(from, to Status) bool {
	return from == StatusPending && to.Terminal()
}

// Transition moves p to status to at now.
func (p *Proposal) Transition(to Status, now time.Time) error {
	if !CanTransition(p.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, to)
	}

	if p.Expired(now) {
		return fmt.Errorf("%w: valid until %s", ErrExpired, p.ValidUntil.Format(time.DateOnly))
	}

	p.Status = to
	p.UpdatedAt = now

	return nil
}
