// Package priority scores tasks and picks the best candidates for a free
// time slot. Everything here is pure: a score depends only on the event and
// the reference time passed in.
package priority

import (
	"math"
	"time"

	"github.com/nany306/bunny-assistant/internal/model"
)

const (
	// BaseWeight scales the urgency*importance product.
	BaseWeight = 10.0

	// MinDurationMinutes floors the duration divisor so very short tasks do
	// not get unbounded scores.
	MinDurationMinutes = 15

	// DeadlineHorizonDays is the window inside which a deadline starts
	// inflating the score.
	DeadlineHorizonDays = 7
)

// Score computes the priority of an event at the given reference time.
//
// Non-tasks, completed tasks and tasks with non-positive duration score 0.
// The base score is urgency * importance * BaseWeight divided by the
// estimated duration in hours (floored at MinDurationMinutes), so quick wins
// outrank long slogs of equal weight. A deadline that is due today or already
// passed returns +Inf; one strictly inside the horizon multiplies the score
// by horizon/daysRemaining. A deadline that does not parse is ignored.
func Score(e *model.Event, now time.Time) float64 {
	if e.Kind != model.KindTask || e.Completed || e.DurationMinutes <= 0 {
		return 0
	}

	minutes := e.DurationMinutes
	if minutes < MinDurationMinutes {
		minutes = MinDurationMinutes
	}
	hours := float64(minutes) / 60.0

	score := float64(e.Urgency) * float64(e.Importance) * BaseWeight / hours

	if e.Deadline != "" {
		if due, err := time.ParseInLocation(model.DeadlineLayout, e.Deadline, now.Location()); err == nil {
			days := daysUntil(due, now)
			if days <= 0 {
				return math.Inf(1)
			}
			if days < DeadlineHorizonDays {
				score *= float64(DeadlineHorizonDays) / float64(days)
			}
		}
	}

	return score
}

// daysUntil counts whole calendar days from now's date to due's date.
// Today and earlier yield <= 0. The dates are re-anchored at UTC midnight so
// the count is exact even when a DST transition shortens a local day.
func daysUntil(due, now time.Time) int {
	dueDate := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	nowDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(dueDate.Sub(nowDate) / (24 * time.Hour))
}
