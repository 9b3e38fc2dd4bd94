package model

import (
	"strings"
	"time"
)

// EventKind discriminates tasks from calendar appointments.
type EventKind string

const (
	KindTask        EventKind = "Task"
	KindAppointment EventKind = "Appointment"
)

const (
	DefaultUrgency         = 3
	DefaultImportance      = 3
	DefaultDurationMinutes = 60
	DefaultProject         = "Misc"

	// DeadlineLayout is the date-only format tasks carry.
	DeadlineLayout = "2006-01-02"
	// StartAtLayout is the format appointments carry.
	StartAtLayout = "2006-01-02 15:04"
)

// Event represents a single item in the planner: either a unit of work (Task)
// or a calendar item (Appointment). Tasks carry urgency, importance, duration
// and an optional deadline; appointments carry a start and optional end time.
//
// Date fields are kept as strings (DeadlineLayout / StartAtLayout) so that a
// malformed value degrades gracefully at scoring time instead of failing the
// decode of a whole inventory.
type Event struct {
	ID              uint      `gorm:"primaryKey" json:"id,omitempty"`
	Name            string    `json:"name"`
	Kind            EventKind `gorm:"index:idx_kind_completed" json:"type"`
	Urgency         int       `json:"urgency"`
	Importance      int       `json:"importance"`
	DurationMinutes int       `json:"duration_minutes"`
	Project         string    `json:"project"`
	ProgressPercent int       `json:"progress_percent"`
	Completed       bool      `gorm:"index:idx_kind_completed" json:"completed"`
	StartAt         string    `json:"start_at,omitempty"`
	EndAt           string    `json:"end_at,omitempty"`
	Deadline        string    `json:"deadline,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	// Stamped by the repository on update, never on insert.
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
}

// TaskInput carries the fields needed to build a task.
// Zero Urgency/Importance mean "use the default"; out-of-range values are rejected.
type TaskInput struct {
	Name            string
	Urgency         int
	Importance      int
	DurationMinutes int
	Project         string
	Deadline        string
}

// AppointmentInput carries the fields needed to build an appointment.
type AppointmentInput struct {
	Name            string
	StartAt         string
	EndAt           string
	DurationMinutes int
	Project         string
}

// NewTask validates the input and builds a Task event. It never coerces
// invalid numerics; callers that want defaults for absent fields apply them
// before calling (DefaultDurationMinutes stays out of here so genuine
// zero-duration tasks remain expressible).
func NewTask(in TaskInput) (*Event, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	urgency, err := normalizeScale("urgency", in.Urgency, DefaultUrgency)
	if err != nil {
		return nil, err
	}
	importance, err := normalizeScale("importance", in.Importance, DefaultImportance)
	if err != nil {
		return nil, err
	}
	if in.DurationMinutes < 0 {
		return nil, &ValidationError{Field: "duration_minutes", Reason: "must not be negative"}
	}

	project := strings.TrimSpace(in.Project)
	if project == "" {
		project = DefaultProject
	}

	return &Event{
		Name:            strings.TrimSpace(in.Name),
		Kind:            KindTask,
		Urgency:         urgency,
		Importance:      importance,
		DurationMinutes: in.DurationMinutes,
		Project:         project,
		Deadline:        strings.TrimSpace(in.Deadline),
	}, nil
}

// NewAppointment validates the input and builds an Appointment event.
func NewAppointment(in AppointmentInput) (*Event, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.StartAt) == "" {
		return nil, &ValidationError{Field: "start_at", Reason: "must not be empty"}
	}
	if in.DurationMinutes < 0 {
		return nil, &ValidationError{Field: "duration_minutes", Reason: "must not be negative"}
	}

	project := strings.TrimSpace(in.Project)
	if project == "" {
		project = DefaultProject
	}

	return &Event{
		Name:            strings.TrimSpace(in.Name),
		Kind:            KindAppointment,
		DurationMinutes: in.DurationMinutes,
		Project:         project,
		StartAt:         strings.TrimSpace(in.StartAt),
		EndAt:           strings.TrimSpace(in.EndAt),
	}, nil
}

func normalizeScale(field string, v, fallback int) (int, error) {
	if v == 0 {
		return fallback, nil
	}
	if v < 1 || v > 5 {
		return 0, &ValidationError{Field: field, Reason: "must be between 1 and 5"}
	}
	return v, nil
}

// RemainingMinutes is the estimated time left: total duration scaled by the
// progress already made, rounded down and floored at zero.
func (e *Event) RemainingMinutes() int {
	remaining := e.DurationMinutes * (100 - e.ProgressPercent) / 100
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ActiveTask reports whether the event is a task still waiting for work.
func (e *Event) ActiveTask() bool {
	return e.Kind == KindTask && !e.Completed
}

// MarkCompleted closes the event: progress goes to 100 and the completed flag
// is set, as one observable transition. Safe to call more than once.
func (e *Event) MarkCompleted() {
	e.ProgressPercent = 100
	e.Completed = true
}

// AdvanceProgress adds delta percentage points of progress, clamped at 100.
// Reaching 100 marks the event completed. Negative deltas are rejected.
func (e *Event) AdvanceProgress(delta int) error {
	if delta < 0 {
		return &ValidationError{Field: "progress_percent", Reason: "delta must not be negative"}
	}
	if delta >= 100-e.ProgressPercent {
		e.MarkCompleted()
		return nil
	}
	e.ProgressPercent += delta
	return nil
}

// NextID mints an identity for a new event when the caller, not the store,
// owns id assignment: one past the highest id in the collection.
func NextID(events []*Event) uint {
	var max uint
	for _, ev := range events {
		if ev.ID > max {
			max = ev.ID
		}
	}
	return max + 1
}
