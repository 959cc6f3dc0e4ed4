// Package insight folds a user's activities into suggestions and badges.
// Every function here is pure and safe for concurrent use.
package insight

import "github.com/iliyamo/carbon-footprint-tracker/internal/model"

// Canned messages returned to clients.
const (
	SuggestTransport   = "Consider carpooling or using public transport."
	SuggestElectricity = "Switch to LED bulbs or unplug devices."

	BadgeConsistentTracker = "Consistent Tracker: Logged 10+ activities!"
	BadgeEcoWarrior        = "Eco Warrior: Kept footprint below 50kg CO₂!"
)

// Thresholds used by the rules below. Comparisons are strict.
const (
	transportValueLimit   = 100.0
	electricityValueLimit = 200.0
	trackerCountLimit     = 10
	ecoWarriorCarbonLimit = 50.0
)

// Suggestions returns the triggered advice in fixed order: transport check,
// then electricity check. The result is never nil. There is no food rule.
func Suggestions(activities []*model.Activity) []string {
	out := make([]string, 0, 2)
	if SumValue(activities, "transport") > transportValueLimit {
		out = append(out, SuggestTransport)
	}
	if SumValue(activities, "electricity") > electricityValueLimit {
		out = append(out, SuggestElectricity)
	}
	return out
}

// Achievements returns earned badges in fixed order: activity count, then
// total carbon. An empty history has zero total carbon and therefore earns
// the Eco Warrior badge.
func Achievements(activities []*model.Activity) []string {
	out := make([]string, 0, 2)
	if len(activities) > trackerCountLimit {
		out = append(out, BadgeConsistentTracker)
	}
	if TotalCarbon(activities) < ecoWarriorCarbonLimit {
		out = append(out, BadgeEcoWarrior)
	}
	return out
}

// TotalCarbon sums Carbon over all activities.
func TotalCarbon(activities []*model.Activity) float64 {
	var sum float64
	for _, a := range activities {
		sum += a.Carbon
	}
	return sum
}

// SumValue sums Value over activities whose Type equals activityType. Units
// are ignored.
func SumValue(activities []*model.Activity, activityType string) float64 {
	var sum float64
	for _, a := range activities {
		if a.Type == activityType {
			sum += a.Value
		}
	}
	return sum
}
