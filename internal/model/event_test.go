package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask_Defaults(t *testing.T) {
	task, err := NewTask(TaskInput{Name: "write minutes"})
	require.NoError(t, err)

	assert.Equal(t, KindTask, task.Kind)
	assert.Equal(t, DefaultUrgency, task.Urgency)
	assert.Equal(t, DefaultImportance, task.Importance)
	assert.Equal(t, DefaultProject, task.Project)
	assert.Zero(t, task.ID, "id is assigned by the store, not the constructor")
	assert.False(t, task.Completed)
	assert.Zero(t, task.ProgressPercent)
}

func TestNewTask_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input TaskInput
	}{
		{"empty name", TaskInput{Name: "   "}},
		{"urgency too high", TaskInput{Name: "x", Urgency: 6}},
		{"urgency negative", TaskInput{Name: "x", Urgency: -1}},
		{"importance too high", TaskInput{Name: "x", Importance: 9}},
		{"negative duration", TaskInput{Name: "x", DurationMinutes: -30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTask(tt.input)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
		})
	}
}

func TestNewAppointment_RequiresStart(t *testing.T) {
	_, err := NewAppointment(AppointmentInput{Name: "dentist"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "start_at", vErr.Field)

	appt, err := NewAppointment(AppointmentInput{Name: "dentist", StartAt: "2026-09-10 14:00", DurationMinutes: 30})
	require.NoError(t, err)
	assert.Equal(t, KindAppointment, appt.Kind)
}

func TestRemainingMinutes(t *testing.T) {
	task := &Event{Kind: KindTask, DurationMinutes: 60, ProgressPercent: 50}
	assert.Equal(t, 30, task.RemainingMinutes())

	task.ProgressPercent = 33
	assert.Equal(t, 40, task.RemainingMinutes(), "rounds down")

	task.ProgressPercent = 100
	assert.Equal(t, 0, task.RemainingMinutes())

	task.DurationMinutes = 0
	task.ProgressPercent = 0
	assert.Equal(t, 0, task.RemainingMinutes())
}

func TestMarkCompleted_Idempotent(t *testing.T) {
	task := &Event{Kind: KindTask, DurationMinutes: 60, ProgressPercent: 40}

	task.MarkCompleted()
	assert.Equal(t, 100, task.ProgressPercent)
	assert.True(t, task.Completed)

	task.MarkCompleted()
	assert.Equal(t, 100, task.ProgressPercent)
	assert.True(t, task.Completed)
}

func TestAdvanceProgress(t *testing.T) {
	task := &Event{Kind: KindTask, DurationMinutes: 60}

	require.NoError(t, task.AdvanceProgress(30))
	assert.Equal(t, 30, task.ProgressPercent)
	assert.False(t, task.Completed)

	require.NoError(t, task.AdvanceProgress(90))
	assert.Equal(t, 100, task.ProgressPercent, "clamped at 100")
	assert.True(t, task.Completed, "reaching 100 completes the task")
}

func TestAdvanceProgress_HugeDeltaClampsAt100(t *testing.T) {
	task := &Event{Kind: KindTask, DurationMinutes: 60, ProgressPercent: 40}

	require.NoError(t, task.AdvanceProgress(math.MaxInt))
	assert.Equal(t, 100, task.ProgressPercent)
	assert.True(t, task.Completed)
}

func TestAdvanceProgress_RejectsNegativeDelta(t *testing.T) {
	task := &Event{Kind: KindTask, DurationMinutes: 60, ProgressPercent: 40}

	err := task.AdvanceProgress(-10)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 40, task.ProgressPercent, "no state change on rejection")
}

func TestNextID(t *testing.T) {
	assert.Equal(t, uint(1), NextID(nil))

	events := []*Event{{ID: 2}, {ID: 7}, {ID: 3}}
	assert.Equal(t, uint(8), NextID(events))
}
