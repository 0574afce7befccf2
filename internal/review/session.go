package review

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lazypower/revisit/internal/record"
)

// DefaultRecentLimit caps the recently reviewed list.
const DefaultRecentLimit = 10

// NeverUsedLabel heads the group of due items that were never accessed.
const NeverUsedLabel = "Never used"

// Group is a run of due records sharing a last-access date bucket.
type Group struct {
	Label   string          `json:"label"`
	Records []record.Record `json:"records"`
}

// Session is the presentation data for one review session.
type Session struct {
	ID          string          `json:"id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Settings    record.Settings `json:"settings"`
	Due         []record.Record `json:"due"`
	Groups      []Group         `json:"groups"`
	Recent      []record.Record `json:"recent"`
	TotalDue    int             `json:"total_due"`
	Tracked     int             `json:"tracked"`
	Ignored     int             `json:"ignored"`
	Progress    Progress        `json:"progress"`
	CaughtUp    bool            `json:"caught_up"`
}

// BuildSession classifies and orders snap relative to now.
//
// A goal configuration error is returned together with the session; every
// other field is still filled in so callers can show the lists.
func BuildSession(snap *record.Snapshot, now time.Time, recentLimit int) (*Session, error) {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}

	c := Classify(snap.Records.Records(), now, snap.Settings.UnusedDaysLimit)

	due := Sorted(c.Due, Ascending)
	recent := Sorted(c.Fresh, Descending)
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	s := &Session{
		ID:          uuid.NewString(),
		GeneratedAt: now,
		Settings:    snap.Settings,
		Due:         due,
		Groups:      GroupByDate(due, now.Location()),
		Recent:      recent,
		TotalDue:    len(due),
		Tracked:     snap.Records.Len(),
		Ignored:     len(c.Ignored),
		CaughtUp:    c.Empty(),
	}

	progress, err := Goals(len(c.AccessedToday), len(c.AccessedThisWeek), snap.Settings.WeeklyReviewCount)
	if err != nil {
		return s, fmt.Errorf("build session: %w", err)
	}
	s.Progress = progress
	return s, nil
}

// GroupByDate splits an ordered list into consecutive runs by last-access
// day (YYYY-MM-DD in loc). Unset records share the NeverUsedLabel bucket.
// Input order is preserved.
func GroupByDate(records []record.Record, loc *time.Location) []Group {
	var groups []Group
	for _, r := range records {
		label := DateLabel(r.LastAccessed, loc)
		if n := len(groups); n > 0 && groups[n-1].Label == label {
			groups[n-1].Records = append(groups[n-1].Records, r)
			continue
		}
		groups = append(groups, Group{Label: label, Records: []record.Record{r}})
	}
	return groups
}

// DateLabel returns the bucket label for an access time.
func DateLabel(at record.AccessTime, loc *time.Location) string {
	if !at.IsSet() {
		return NeverUsedLabel
	}
	return at.Time().In(loc).Format(time.DateOnly)
}
