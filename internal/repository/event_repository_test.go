package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nany306/bunny-assistant/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A named in-memory database per test keeps connections in the pool on
	// the same data without leaking between tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := NewDB(dsn)
	require.NoError(t, err)
	return db
}

func newTask(t *testing.T, name string, urgency int) *model.Event {
	t.Helper()
	task, err := model.NewTask(model.TaskInput{Name: name, Urgency: urgency, DurationMinutes: 60})
	require.NoError(t, err)
	return task
}

func TestSaveAll_InsertAssignsID(t *testing.T) {
	repo := NewEventRepository(newTestDB(t), IDModeStore)
	ctx := context.Background()

	task := newTask(t, "write minutes", 3)
	require.Zero(t, task.ID)

	require.NoError(t, repo.SaveAll(ctx, []*model.Event{task}))
	assert.NotZero(t, task.ID, "assigned id is written back onto the caller's object")
	assert.Nil(t, task.UpdatedAt, "inserts carry no update stamp")
}

func TestSaveAll_IdempotentForExistingID(t *testing.T) {
	repo := NewEventRepository(newTestDB(t), IDModeStore)
	ctx := context.Background()

	task := newTask(t, "write minutes", 3)
	require.NoError(t, repo.SaveAll(ctx, []*model.Event{task}))
	id := task.ID

	require.NoError(t, repo.SaveAll(ctx, []*model.Event{task}))
	require.NoError(t, repo.SaveAll(ctx, []*model.Event{task}))

	assert.Equal(t, id, task.ID, "id is stable once assigned")
	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "no duplicate rows")
}

func TestSaveAll_MixedInsertAndUpdate(t *testing.T) {
	repo := NewEventRepository(newTestDB(t), IDModeStore)
	ctx := context.Background()

	existing := newTask(t, "old", 2)
	require.NoError(t, repo.SaveAll(ctx, []*model.Event{existing}))

	existing.Name = "old, renamed"
	fresh := newTask(t, "fresh", 4)

	require.NoError(t, repo.SaveAll(ctx, []*model.Event{existing, fresh}))
	assert.NotZero(t, fresh.ID)
	assert.NotNil(t, existing.UpdatedAt, "updates get stamped")

	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	byID := map[uint]*model.Event{all[0].ID: all[0], all[1].ID: all[1]}
	assert.Equal(t, "old, renamed", byID[existing.ID].Name)
	assert.Equal(t, "fresh", byID[fresh.ID].Name)
}

func TestSaveAll_LoadAll_RoundTrip(t *testing.T) {
	repo := NewEventRepository(newTestDB(t), IDModeStore)
	ctx := context.Background()

	task, err := model.NewTask(model.TaskInput{
		Name:            "review contract",
		Urgency:         5,
		Importance:      4,
		DurationMinutes: 90,
		Project:         "Finance",
		Deadline:        "2026-09-15",
	})
	require.NoError(t, err)
	task.ProgressPercent = 25

	require.NoError(t, repo.SaveAll(ctx, []*model.Event{task}))

	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	got := all[0]
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, "review contract", got.Name)
	assert.Equal(t, model.KindTask, got.Kind)
	assert.Equal(t, 5, got.Urgency)
	assert.Equal(t, 4, got.Importance)
	assert.Equal(t, 90, got.DurationMinutes)
	assert.Equal(t, "Finance", got.Project)
	assert.Equal(t, 25, got.ProgressPercent)
	assert.Equal(t, "2026-09-15", got.Deadline)
	assert.False(t, got.Completed)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, 5*time.Second)
}

func TestLoadAll_OrdersByLastModifiedThenID(t *testing.T) {
	repo := NewEventRepository(newTestDB(t), IDModeStore)
	ctx := context.Background()

	first := newTask(t, "first", 3)
	require.NoError(t, repo.SaveAll(ctx, []*model.Event{first}))
	time.Sleep(20 * time.Millisecond)

	second := newTask(t, "second", 3)
	require.NoError(t, repo.SaveAll(ctx, []*model.Event{second}))
	time.Sleep(20 * time.Millisecond)

	// Touching the older row moves it to the tail.
	first.ProgressPercent = 10
	require.NoError(t, repo.SaveAll(ctx, []*model.Event{first}))

	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Name)
	assert.Equal(t, "first", all[1].Name)
}

func TestSaveAll_CallerMode_RequiresID(t *testing.T) {
	repo := NewEventRepository(newTestDB(t), IDModeCaller)
	ctx := context.Background()

	task := newTask(t, "no id", 3)
	err := repo.SaveAll(ctx, []*model.Event{task})

	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "id", vErr.Field)
}

func TestSaveAll_FailedBatchLeavesCallerObjectsUntouched(t *testing.T) {
	repo := NewEventRepository(newTestDB(t), IDModeCaller)
	ctx := context.Background()

	valid := newTask(t, "client-owned", 3)
	valid.ID = 42
	missing := newTask(t, "no id", 3)

	err := repo.SaveAll(ctx, []*model.Event{valid, missing})
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)

	assert.Equal(t, uint(42), valid.ID)
	assert.Nil(t, valid.UpdatedAt, "a rolled-back batch must not stamp the caller's objects")

	all, loadErr := repo.LoadAll(ctx)
	require.NoError(t, loadErr)
	assert.Empty(t, all, "the whole batch rolls back")
}

func TestSaveAll_CallerMode_UpsertsOnSuppliedID(t *testing.T) {
	repo := NewEventRepository(newTestDB(t), IDModeCaller)
	ctx := context.Background()

	task := newTask(t, "client-owned", 3)
	task.ID = 42
	require.NoError(t, repo.SaveAll(ctx, []*model.Event{task}))

	task.Name = "client-owned, renamed"
	require.NoError(t, repo.SaveAll(ctx, []*model.Event{task}))

	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, uint(42), all[0].ID)
	assert.Equal(t, "client-owned, renamed", all[0].Name)
}

func TestParseIDMode(t *testing.T) {
	mode, err := ParseIDMode("")
	require.NoError(t, err)
	assert.Equal(t, IDModeStore, mode)

	mode, err = ParseIDMode("caller")
	require.NoError(t, err)
	assert.Equal(t, IDModeCaller, mode)

	_, err = ParseIDMode("client")
	require.Error(t, err)
}
