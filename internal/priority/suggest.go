package priority

import (
	"sort"
	"time"

	"github.com/nany306/bunny-assistant/internal/model"
)

// MaxSuggestions caps how many candidates Suggest returns.
const MaxSuggestions = 3

// Suggestion pairs an event with its computed score.
type Suggestion struct {
	Event *model.Event
	Score float64
}

// Suggest picks up to MaxSuggestions tasks that fit into a free slot of
// availableMinutes, best score first. A task qualifies when it is active and
// its remaining duration is positive and no longer than the slot: nothing
// left to do excludes it, and so does not fitting the window.
//
// The sort is stable, so equal scores keep their collection order. Suggest
// never mutates the events.
func Suggest(events []*model.Event, availableMinutes int, now time.Time) []Suggestion {
	var candidates []Suggestion
	for _, ev := range events {
		if !ev.ActiveTask() {
			continue
		}
		remaining := ev.RemainingMinutes()
		if remaining <= 0 || remaining > availableMinutes {
			continue
		}
		candidates = append(candidates, Suggestion{Event: ev, Score: Score(ev, now)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > MaxSuggestions {
		candidates = candidates[:MaxSuggestions]
	}
	return candidates
}

// Rank scores every active task and returns them best first, with no window
// filter and no cap. It backs the priority listing and the daily report.
func Rank(events []*model.Event, now time.Time) []Suggestion {
	var ranked []Suggestion
	for _, ev := range events {
		if !ev.ActiveTask() {
			continue
		}
		ranked = append(ranked, Suggestion{Event: ev, Score: Score(ev, now)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
