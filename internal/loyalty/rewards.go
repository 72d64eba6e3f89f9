package loyalty

import (
	"fmt"
	"strings"

	"github.com/xaenox/cafe-bot/internal/models"
)

const (
	// StartingPoints is the balance a new visitor sees.
	StartingPoints = 850

	// NextRewardTarget is the balance the progress bar counts toward.
	NextRewardTarget = 1000
	NextRewardName   = "Free Lunch"
)

type tier struct {
	points int
	name   string
}

var tiers = []tier{
	{100, "Free Coffee"},
	{250, "Free Pastry"},
	{500, "10% Off Next Order"},
	{1000, "Free Lunch"},
	{2000, "VIP Status"},
}

// EarningRules lists the activities that award points.
var EarningRules = []models.EarningRule{
	{Activity: "Coffee Purchase", Points: 10},
	{Activity: "Food Purchase", Points: 25},
	{Activity: "Photo Share", Points: 15},
	{Activity: "Friend Referral", Points: 100},
}

// Rewards returns every tier with its unlocked flag for points.
func Rewards(points int) []models.Reward {
	out := make([]models.Reward, len(tiers))
	for i, t := range tiers {
		out[i] = models.Reward{Points: t.points, Name: t.name, Unlocked: points >= t.points}
	}
	return out
}

// Progress is the percentage toward NextRewardTarget, capped at 100.
func Progress(points int) float64 {
	p := float64(points) * 100 / NextRewardTarget
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// PointsToGo is how many points remain until NextRewardTarget.
func PointsToGo(points int) int {
	if points >= NextRewardTarget {
		return 0
	}
	return NextRewardTarget - points
}

// EarningFor looks up an activity by name, case-insensitively.
func EarningFor(activity string) (models.EarningRule, error) {
	for _, r := range EarningRules {
		if strings.EqualFold(r.Activity, strings.TrimSpace(activity)) {
			return r, nil
		}
	}
	return models.EarningRule{}, fmt.Errorf("unknown activity %q", activity)
}
