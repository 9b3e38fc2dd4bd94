package service

import (
	"context"
	"sync"
	"time"

	"github.com/nany306/bunny-assistant/internal/model"
	"github.com/nany306/bunny-assistant/internal/priority"
	"github.com/nany306/bunny-assistant/internal/repository"
)

// PlannerService owns the stateful working collection: every mutation is a
// load -> mutate -> persist sequence against the store. The mutex serializes
// those sequences so two concurrent callers cannot clobber each other's
// writes with a stale snapshot.
type PlannerService struct {
	events *repository.EventRepository
	mu     sync.Mutex
}

func NewPlannerService(events *repository.EventRepository) *PlannerService {
	return &PlannerService{events: events}
}

// AddTask validates, appends and persists a new task, returning it with the
// id the store assigned.
func (s *PlannerService) AddTask(ctx context.Context, input model.TaskInput) (*model.Event, error) {
	task, err := model.NewTask(input)
	if err != nil {
		return nil, err
	}
	return s.appendAndSave(ctx, task)
}

// AddAppointment validates, appends and persists a new appointment.
func (s *PlannerService) AddAppointment(ctx context.Context, input model.AppointmentInput) (*model.Event, error) {
	appt, err := model.NewAppointment(input)
	if err != nil {
		return nil, err
	}
	return s.appendAndSave(ctx, appt)
}

func (s *PlannerService) appendAndSave(ctx context.Context, ev *model.Event) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inventory, err := s.events.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	s.mintID(inventory, ev)
	inventory = append(inventory, ev)
	if err := s.events.SaveAll(ctx, inventory); err != nil {
		return nil, err
	}
	return ev, nil
}

// mintID assigns max(id)+1 when the repository trusts caller-supplied
// identities. In store mode the id stays 0 and SQLite assigns it.
func (s *PlannerService) mintID(inventory []*model.Event, ev *model.Event) {
	if s.events.Mode() == repository.IDModeCaller {
		ev.ID = model.NextID(inventory)
	}
}

// Complete marks the task with the given id as done. It returns ErrNotFound
// when the id is unknown, refers to an appointment, or the task is already
// completed.
func (s *PlannerService) Complete(ctx context.Context, id uint) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inventory, err := s.events.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	task := findActiveTask(inventory, id)
	if task == nil {
		return nil, model.ErrNotFound
	}

	task.MarkCompleted()
	if err := s.events.SaveAll(ctx, inventory); err != nil {
		return nil, err
	}
	return task, nil
}

// Advance adds delta percentage points of progress to the task with the
// given id; reaching 100 completes it.
func (s *PlannerService) Advance(ctx context.Context, id uint, delta int) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inventory, err := s.events.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	task := findActiveTask(inventory, id)
	if task == nil {
		return nil, model.ErrNotFound
	}

	if err := task.AdvanceProgress(delta); err != nil {
		return nil, err
	}
	if err := s.events.SaveAll(ctx, inventory); err != nil {
		return nil, err
	}
	return task, nil
}

// Suggest returns up to three tasks that fit into a free slot of the given
// length, best score first. Advisory only: nothing is mutated or persisted.
func (s *PlannerService) Suggest(ctx context.Context, availableMinutes int, now time.Time) ([]priority.Suggestion, error) {
	inventory, err := s.events.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return priority.Suggest(inventory, availableMinutes, now), nil
}

// Inventory returns the full working collection in store order.
func (s *PlannerService) Inventory(ctx context.Context) ([]*model.Event, error) {
	return s.events.LoadAll(ctx)
}

// Seed writes a pair of demo tasks when the store is empty, so a fresh
// install has something to show. A non-empty store is left untouched.
func (s *PlannerService) Seed(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inventory, err := s.events.LoadAll(ctx)
	if err != nil {
		return err
	}
	if len(inventory) > 0 {
		return nil
	}

	contract, err := model.NewTask(model.TaskInput{
		Name:            "Review contract A",
		Urgency:         5,
		Importance:      5,
		DurationMinutes: 120,
		Project:         "Finance",
		Deadline:        now.AddDate(0, 0, 14).Format(model.DeadlineLayout),
	})
	if err != nil {
		return err
	}
	report, err := model.NewTask(model.TaskInput{
		Name:            "Finish the report",
		Urgency:         4,
		Importance:      4,
		DurationMinutes: 60,
		Project:         "Admin",
		Deadline:        now.AddDate(0, 0, 9).Format(model.DeadlineLayout),
	})
	if err != nil {
		return err
	}

	s.mintID(inventory, contract)
	inventory = append(inventory, contract)
	s.mintID(inventory, report)
	inventory = append(inventory, report)

	return s.events.SaveAll(ctx, inventory)
}

func findActiveTask(inventory []*model.Event, id uint) *model.Event {
	for _, ev := range inventory {
		if ev.ID == id && ev.ActiveTask() {
			return ev
		}
	}
	return nil
}
