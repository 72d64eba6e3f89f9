package loyalty

import (
	"fmt"
	"sync"
	"time"

	"github.com/xaenox/cafe-bot/internal/models"
	"github.com/xaenox/cafe-bot/internal/schedule"
)

// Account is one visitor's loyalty state. Spins settle on the owner's
// scheduler, so closing the scheduler abandons an unsettled spin.
type Account struct {
	mu    sync.Mutex
	state models.LoyaltyState
	wheel *Wheel
	sched *schedule.Scheduler
}

func NewAccount(wheel *Wheel, sched *schedule.Scheduler, startingPoints int) *Account {
	return &Account{
		state: models.LoyaltyState{Points: startingPoints},
		wheel: wheel,
		sched: sched,
	}
}

// State returns a snapshot of the account.
func (a *Account) State() models.LoyaltyState {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.state
	if s.LastSpin != nil {
		t := *s.LastSpin
		s.LastSpin = &t
	}
	if s.LastResult != nil {
		r := *s.LastResult
		s.LastResult = &r
	}
	return s
}

// CanSpin reports whether a spin started at now would be accepted.
func (a *Account) CanSpin(now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.state.Spinning && CanSpin(a.state.LastSpin, now)
}

// Spin starts the wheel. The spin time is recorded immediately; after the
// wheel's delay the prize is drawn, points are added and settled is called
// with the result.
func (a *Account) Spin(now time.Time, settled func(models.SpinResult)) error {
	a.mu.Lock()
	if a.state.Spinning {
		a.mu.Unlock()
		return ErrAlreadySpinning
	}
	if !CanSpin(a.state.LastSpin, now) {
		a.mu.Unlock()
		return ErrSpinUnavailable
	}
	prev := a.state.LastSpin
	a.state.LastSpin = &now
	a.state.Spinning = true
	a.mu.Unlock()

	_, err := a.sched.After(a.wheel.Delay(), func() {
		a.mu.Lock()
		result := a.wheel.draw(a.state.Points, now)
		a.state.Points = result.Balance
		a.state.Spinning = false
		a.state.LastResult = &result
		a.mu.Unlock()

		if settled != nil {
			settled(result)
		}
	})
	if err != nil {
		a.mu.Lock()
		a.state.LastSpin = prev
		a.state.Spinning = false
		a.mu.Unlock()
		return fmt.Errorf("schedule spin: %w", err)
	}
	return nil
}

// Earn credits the points for activity and returns the new balance.
func (a *Account) Earn(activity string) (int, error) {
	rule, err := EarningFor(activity)
	if err != nil {
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Points += rule.Points
	return a.state.Points, nil
}
