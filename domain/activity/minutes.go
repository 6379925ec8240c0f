package activity

import (
	"goimpact/domain/survey"
)

const (
	// ActiveThresholdMinutes is the WHO weekly guideline for moderate-equivalent activity.
	ActiveThresholdMinutes = 150.0
	// MinWalkingSession discards walks shorter than ten minutes.
	MinWalkingSession = 10.0
)

// frequencyDays maps the frequency answer to sessions per week; code 1 is "less than weekly".
var frequencyDays = map[int]float64{1: 0.5, 2: 1, 3: 2, 4: 3, 5: 4, 6: 5, 7: 6, 8: 7, 9: 8}

// DaysPerWeek converts a frequency code, returning 0 for unknown codes.
func DaysPerWeek(code int) float64 {
	return frequencyDays[code]
}

// WeeklyMinutes is sessions per week times minutes per session.
func WeeklyMinutes(s survey.Session) float64 {
	return DaysPerWeek(s.FrequencyCode) * s.Minutes
}

// intensityMultiplier weights vigorous minutes double and ignores low-intensity ones.
func intensityMultiplier(i survey.Intensity) float64 {
	switch i {
	case survey.IntensityHigh:
		return 2
	case survey.IntensityModerate:
		return 1
	}
	return 0
}

// Breakdown is the per-activity weekly minutes for one respondent.
type Breakdown struct {
	GymMinutes     float64 `json:"gym_minutes"`
	WalkingMinutes float64 `json:"walking_minutes"`
	SportsMinutes  float64 `json:"sports_minutes"`
	TotalMinutes   float64 `json:"total_activity_mins"` // moderate-equivalent
	Active         bool    `json:"active_flag"`
}

// Classify computes moderate-equivalent weekly minutes and the active flag.
func Classify(a survey.ActivityAnswers) Breakdown {
	b := Breakdown{
		GymMinutes:    WeeklyMinutes(a.Gym),
		SportsMinutes: WeeklyMinutes(a.Sports),
	}
	if a.Walking.Minutes >= MinWalkingSession {
		b.WalkingMinutes = WeeklyMinutes(a.Walking)
	}

	b.TotalMinutes = b.GymMinutes*intensityMultiplier(a.Gym.Intensity) +
		b.WalkingMinutes*intensityMultiplier(a.Walking.Intensity) +
		b.SportsMinutes*intensityMultiplier(a.Sports.Intensity)
	b.Active = b.TotalMinutes >= ActiveThresholdMinutes
	return b
}
