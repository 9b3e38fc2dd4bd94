package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nany306/bunny-assistant/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doJSON(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	New().Handler().ServeHTTP(rec, req)
	return rec
}

func sampleInventory() []*model.Event {
	return []*model.Event{
		{ID: 1, Name: "quick win", Kind: model.KindTask, Urgency: 5, Importance: 5, DurationMinutes: 30},
		{ID: 2, Name: "done already", Kind: model.KindTask, Urgency: 5, Importance: 5, DurationMinutes: 30, ProgressPercent: 100, Completed: true},
		{ID: 3, Name: "dentist", Kind: model.KindAppointment, StartAt: "2026-09-10 14:00", DurationMinutes: 45},
		{ID: 4, Name: "slog", Kind: model.KindTask, Urgency: 2, Importance: 2, DurationMinutes: 240},
	}
}

func TestHandlePriority(t *testing.T) {
	rec := doJSON(t, http.MethodPost, "/api/v1/tasks/priority", gin.H{"inventory": sampleInventory()})
	require.Equal(t, http.StatusOK, rec.Code)

	var got []struct {
		ID            uint    `json:"id"`
		Name          string  `json:"name"`
		ScorePriority float64 `json:"score_priority"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	require.Len(t, got, 2, "completed tasks and appointments are excluded")
	assert.Equal(t, "quick win", got[0].Name)
	assert.Equal(t, "slog", got[1].Name)
	assert.Greater(t, got[0].ScorePriority, got[1].ScorePriority)
}

func TestHandlePriority_DeadlineTodayHitsCeiling(t *testing.T) {
	due := &model.Event{
		ID: 1, Name: "due now", Kind: model.KindTask,
		Urgency: 3, Importance: 3, DurationMinutes: 60,
		Deadline: time.Now().Format(model.DeadlineLayout),
	}
	rec := doJSON(t, http.MethodPost, "/api/v1/tasks/priority", gin.H{"inventory": []*model.Event{due}})
	require.Equal(t, http.StatusOK, rec.Code)

	var got []struct {
		ScorePriority float64 `json:"score_priority"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, scoreCeiling, got[0].ScorePriority, "the infinite sentinel crosses the wire as a finite ceiling")
}

func TestHandleAddTask(t *testing.T) {
	rec := doJSON(t, http.MethodPost, "/api/v1/tasks", gin.H{
		"inventory": sampleInventory(),
		"name":      "new task",
		"urgency":   4,
		"project":   "Home",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var inventory []*model.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inventory))
	require.Len(t, inventory, 5)

	added := inventory[4]
	assert.Equal(t, uint(5), added.ID, "id minted as max+1")
	assert.Equal(t, "new task", added.Name)
	assert.Equal(t, 4, added.Urgency)
	assert.Equal(t, model.DefaultImportance, added.Importance)
	assert.Equal(t, model.DefaultDurationMinutes, added.DurationMinutes)
}

func TestHandleAddTask_Validation(t *testing.T) {
	rec := doJSON(t, http.MethodPost, "/api/v1/tasks", gin.H{
		"inventory": []*model.Event{},
		"name":      "bad",
		"urgency":   11,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "urgency")
}

func TestHandleComplete(t *testing.T) {
	rec := doJSON(t, http.MethodPost, "/api/v1/tasks/complete", gin.H{
		"inventory": sampleInventory(),
		"id":        1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var inventory []*model.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inventory))
	require.Len(t, inventory, 4)
	assert.True(t, inventory[0].Completed)
	assert.Equal(t, 100, inventory[0].ProgressPercent)
}

func TestHandleComplete_NotFound(t *testing.T) {
	rec := doJSON(t, http.MethodPost, "/api/v1/tasks/complete", gin.H{
		"inventory": sampleInventory(),
		"id":        99,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Already completed counts as not found too.
	rec = doJSON(t, http.MethodPost, "/api/v1/tasks/complete", gin.H{
		"inventory": sampleInventory(),
		"id":        2,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSuggest(t *testing.T) {
	rec := doJSON(t, http.MethodPost, "/api/v1/tasks/suggest", gin.H{
		"inventory":         sampleInventory(),
		"available_minutes": 60,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1, "only the task that fits the window")
	assert.Equal(t, "quick win", got[0].Name)
}

func TestHandleSuggest_RejectsNonPositiveWindow(t *testing.T) {
	rec := doJSON(t, http.MethodPost, "/api/v1/tasks/suggest", gin.H{
		"inventory":         sampleInventory(),
		"available_minutes": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
