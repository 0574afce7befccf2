package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lazypower/revisit/internal/review"
)

// StartReminder logs review progress on a standard five-field cron
// schedule (evaluated in local time) until Stop is called. An empty
// expression disables the reminder.
func (e *Engine) StartReminder(expr string) error {
	if expr == "" {
		return nil
	}
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", expr, err)
	}

	go func() {
		for {
			next := sched.Next(e.now())
			timer := time.NewTimer(time.Until(next))
			select {
			case <-timer.C:
				e.remind(context.Background())
			case <-e.stopCh:
				timer.Stop()
				return
			}
		}
	}()

	e.log.Info().Str("schedule", expr).Msg("review reminder scheduled")
	return nil
}

// remind logs where today's and this week's review goals stand.
func (e *Engine) remind(ctx context.Context) *review.Session {
	sess, err := e.Session(ctx)
	if sess == nil {
		e.log.Error().Err(err).Msg("reminder: open session")
		return nil
	}
	if err != nil {
		e.log.Warn().Err(err).Int("due", sess.TotalDue).Msg("reminder: goals unavailable")
		return sess
	}

	p := sess.Progress
	ev := e.log.Info()
	if !sess.CaughtUp && p.DailyCount < p.DailyTarget {
		ev = e.log.Warn()
	}
	ev.Int("due", sess.TotalDue).
		Int("today", p.DailyCount).
		Int("daily_target", p.DailyTarget).
		Int("week", p.WeeklyCount).
		Int("weekly_target", p.WeeklyTarget).
		Bool("caught_up", sess.CaughtUp).
		Msg("review reminder")
	return sess
}
