package models

import "time"

// LoyaltyState is a visitor's point balance and spin history. It lives only
// as long as the visitor's session.
type LoyaltyState struct {
	Points   int        `json:"points"`
	LastSpin *time.Time `json:"last_spin,omitempty"`
	Spinning bool       `json:"spinning"`

	LastResult *SpinResult `json:"last_result,omitempty"`
}

// Reward is a redeemable tier of the loyalty program.
type Reward struct {
	Points   int    `json:"points"`
	Name     string `json:"name"`
	Unlocked bool   `json:"unlocked"`
}

// EarningRule describes how many points an activity is worth.
type EarningRule struct {
	Activity string `json:"activity"`
	Points   int    `json:"points"`
}

// SpinResult is the settled outcome of a wheel spin.
type SpinResult struct {
	Prize   string    `json:"prize"`
	Points  int       `json:"points"`
	Balance int       `json:"balance"`
	SpunAt  time.Time `json:"spun_at"`
}
