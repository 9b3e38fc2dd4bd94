package server

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nany306/bunny-assistant/internal/model"
	"github.com/nany306/bunny-assistant/internal/priority"
)

// scoreCeiling stands in for the +Inf sentinel on the wire; JSON has no
// Infinity literal.
const scoreCeiling = 1e9

type inventoryRequest struct {
	Inventory []*model.Event `json:"inventory"`
}

type addTaskRequest struct {
	Inventory       []*model.Event `json:"inventory"`
	Name            string         `json:"name"`
	Type            string         `json:"type"`
	Urgency         int            `json:"urgency"`
	Importance      int            `json:"importance"`
	DurationMinutes *int           `json:"duration_minutes"`
	Project         string         `json:"project"`
	Deadline        string         `json:"deadline"`
	StartAt         string         `json:"start_at"`
	EndAt           string         `json:"end_at"`
}

type completeRequest struct {
	Inventory []*model.Event `json:"inventory"`
	ID        uint           `json:"id"`
}

type suggestRequest struct {
	Inventory        []*model.Event `json:"inventory"`
	AvailableMinutes int            `json:"available_minutes"`
}

// scoredEvent attaches the output-only score_priority field to an event.
type scoredEvent struct {
	*model.Event
	ScorePriority float64 `json:"score_priority"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handlePriority returns the client's active tasks best score first, each
// decorated with score_priority. The inventory itself is not echoed back.
func (s *Server) handlePriority(c *gin.Context) {
	var req inventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ranked := priority.Rank(req.Inventory, time.Now())
	result := make([]scoredEvent, 0, len(ranked))
	for _, sug := range ranked {
		result = append(result, scoredEvent{Event: sug.Event, ScorePriority: wireScore(sug.Score)})
	}
	c.JSON(http.StatusOK, result)
}

// handleAddTask appends a new task (or appointment) to the client's inventory
// and returns the full updated inventory. The new entity's id is minted here
// so the client gets a stable handle immediately.
func (s *Server) handleAddTask(c *gin.Context) {
	var req addTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	duration := model.DefaultDurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}

	var (
		ev  *model.Event
		err error
	)
	switch req.Type {
	case "", string(model.KindTask):
		ev, err = model.NewTask(model.TaskInput{
			Name:            req.Name,
			Urgency:         req.Urgency,
			Importance:      req.Importance,
			DurationMinutes: duration,
			Project:         req.Project,
			Deadline:        req.Deadline,
		})
	case string(model.KindAppointment):
		ev, err = model.NewAppointment(model.AppointmentInput{
			Name:            req.Name,
			StartAt:         req.StartAt,
			EndAt:           req.EndAt,
			DurationMinutes: duration,
			Project:         req.Project,
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be Task or Appointment"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev.ID = model.NextID(req.Inventory)
	ev.CreatedAt = time.Now()
	inventory := append(req.Inventory, ev)

	c.JSON(http.StatusCreated, inventory)
}

// handleComplete marks the identified task done and returns the full updated
// inventory, or 404 when the id is unknown or already completed.
func (s *Server) handleComplete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, ev := range req.Inventory {
		if ev.ID == req.ID && ev.ActiveTask() {
			ev.MarkCompleted()
			c.JSON(http.StatusOK, req.Inventory)
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "task not found or already completed"})
}

// handleSuggest returns up to three tasks that fit the requested free slot.
func (s *Server) handleSuggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AvailableMinutes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "available_minutes must be positive"})
		return
	}

	suggestions := priority.Suggest(req.Inventory, req.AvailableMinutes, time.Now())
	result := make([]scoredEvent, 0, len(suggestions))
	for _, sug := range suggestions {
		result = append(result, scoredEvent{Event: sug.Event, ScorePriority: wireScore(sug.Score)})
	}
	c.JSON(http.StatusOK, result)
}

func wireScore(score float64) float64 {
	if math.IsInf(score, 1) || score > scoreCeiling {
		return scoreCeiling
	}
	return math.Round(score*100) / 100
}
