package review

import (
	"fmt"
	"math"
)

// Progress is the review progress against the configured weekly target.
type Progress struct {
	WeeklyTarget int     `json:"weekly_target"`
	WeeklyCount  int     `json:"weekly_count"`
	WeeklyPct    float64 `json:"weekly_pct"`
	DailyTarget  int     `json:"daily_target"`
	DailyCount   int     `json:"daily_count"`
	DailyPct     float64 `json:"daily_pct"`
}

// Goals computes progress from the number of items accessed today and this
// week. The daily target is ceil(weekly/7). Percentages are capped at 100.
// A non-positive weekly target is a configuration error.
func Goals(accessedToday, accessedThisWeek, weeklyReviewCount int) (Progress, error) {
	if weeklyReviewCount <= 0 {
		return Progress{}, fmt.Errorf("%w: weekly review count is %d", ErrInvalidGoal, weeklyReviewCount)
	}

	daily := (weeklyReviewCount + 6) / 7
	return Progress{
		WeeklyTarget: weeklyReviewCount,
		WeeklyCount:  accessedThisWeek,
		WeeklyPct:    pct(accessedThisWeek, weeklyReviewCount),
		DailyTarget:  daily,
		DailyCount:   accessedToday,
		DailyPct:     pct(accessedToday, daily),
	}, nil
}

func pct(n, target int) float64 {
	return math.Min(100, float64(n)/float64(target)*100)
}
