package loyalty

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/xaenox/cafe-bot/internal/models"
)

// SpinCooldown is how long a visitor waits between spins.
const SpinCooldown = 24 * time.Hour

const (
	minAward   = 50
	awardRange = 100
)

var (
	ErrSpinUnavailable = errors.New("spin not available yet")
	ErrAlreadySpinning = errors.New("wheel is already spinning")
)

// Prizes are the wheel segments.
var Prizes = []string{
	"Free Coffee ☕",
	"10% Off 💫",
	"Free Pastry 🥐",
	"Double Points ⭐",
	"Free Lunch 🥗",
	"20% Off 🎉",
	"Free Drink 🧋",
	"Loyalty Points 💎",
}

// RandSource is the randomness behind prize draws. *rand.Rand satisfies it.
type RandSource interface {
	Intn(n int) int
}

// CanSpin reports whether a visitor whose last spin was at lastSpin may spin
// again at now. A nil lastSpin means the visitor never spun.
func CanSpin(lastSpin *time.Time, now time.Time) bool {
	return lastSpin == nil || now.Sub(*lastSpin) > SpinCooldown
}

// NextSpinAt returns when the visitor becomes eligible again.
func NextSpinAt(lastSpin *time.Time, now time.Time) time.Time {
	if CanSpin(lastSpin, now) {
		return now
	}
	return lastSpin.Add(SpinCooldown + time.Millisecond)
}

// Wheel draws prizes and point awards from a RandSource and holds the
// configured spin duration.
type Wheel struct {
	mu    sync.Mutex
	rand  RandSource
	delay time.Duration
}

// NewWheel returns a wheel drawing from src. A nil src seeds one from the clock.
func NewWheel(src RandSource, delay time.Duration) *Wheel {
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Wheel{rand: src, delay: delay}
}

// Delay is how long a spin takes before it settles.
func (w *Wheel) Delay() time.Duration {
	return w.delay
}

// PickPrize returns one of Prizes uniformly at random.
func (w *Wheel) PickPrize() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Prizes[w.rand.Intn(len(Prizes))]
}

// AwardPoints returns a point award in [50, 150).
func (w *Wheel) AwardPoints() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return minAward + w.rand.Intn(awardRange)
}

func (w *Wheel) draw(balance int, at time.Time) models.SpinResult {
	prize := w.PickPrize()
	points := w.AwardPoints()
	return models.SpinResult{
		Prize:   prize,
		Points:  points,
		Balance: balance + points,
		SpunAt:  at,
	}
}
