package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nany306/bunny-assistant/internal/model"
)

// IDMode selects who mints event identities.
type IDMode string

const (
	// IDModeStore lets SQLite assign ids on insert (the default).
	IDModeStore IDMode = "store"
	// IDModeCaller trusts ids supplied by the caller; every entity must
	// arrive with one.
	IDModeCaller IDMode = "caller"
)

// ParseIDMode validates a configured id mode. The empty string means IDModeStore.
func ParseIDMode(raw string) (IDMode, error) {
	switch IDMode(raw) {
	case "", IDModeStore:
		return IDModeStore, nil
	case IDModeCaller:
		return IDModeCaller, nil
	default:
		return "", fmt.Errorf("unknown id mode %q, expected %q or %q", raw, IDModeStore, IDModeCaller)
	}
}

// EventRepository reconciles an in-memory event collection against SQLite.
type EventRepository struct {
	db   *gorm.DB
	mode IDMode
}

func NewEventRepository(db *gorm.DB, mode IDMode) *EventRepository {
	if mode == "" {
		mode = IDModeStore
	}
	return &EventRepository{db: db, mode: mode}
}

// Mode reports who mints event identities for this repository.
func (r *EventRepository) Mode() IDMode {
	return r.mode
}

// SaveAll upserts every event in one transaction: all writes commit together
// or not at all. Insert vs update is decided per entity, so a single call may
// carry a mix of both.
//
// In store mode an event without an id is an insert and gets its assigned id
// written back; an event with an id is a full-row update and gets its
// updated_at stamped. In caller mode every event must carry an id and rows
// are written insert-or-update on that id. Nothing is ever deleted here.
//
// The writes go through staged copies, and the id and timestamp write-backs
// land on the caller's objects only after the transaction commits: a failed
// persist leaves the in-memory collection exactly as it was.
func (r *EventRepository) SaveAll(ctx context.Context, events []*model.Event) error {
	staged := make([]model.Event, len(events))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for i, ev := range events {
			staged[i] = *ev
			if err := r.saveOne(tx, &staged[i], now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i, ev := range events {
		ev.ID = staged[i].ID
		ev.CreatedAt = staged[i].CreatedAt
		ev.UpdatedAt = staged[i].UpdatedAt
	}
	return nil
}

func (r *EventRepository) saveOne(tx *gorm.DB, ev *model.Event, now time.Time) error {
	if r.mode == IDModeCaller {
		if ev.ID == 0 {
			return &model.ValidationError{Field: "id", Reason: "required in caller id mode"}
		}
		ev.UpdatedAt = &now
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(ev).Error; err != nil {
			return fmt.Errorf("upsert event %d: %w", ev.ID, err)
		}
		return nil
	}

	if ev.ID == 0 {
		if err := tx.Create(ev).Error; err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		return nil
	}

	ev.UpdatedAt = &now
	if err := tx.Save(ev).Error; err != nil {
		return fmt.Errorf("update event %d: %w", ev.ID, err)
	}
	return nil
}

// LoadAll returns every event ordered by last-modified time (update stamp if
// present, else creation stamp), then id, so a freshly touched item always
// surfaces in the same position.
func (r *EventRepository) LoadAll(ctx context.Context) ([]*model.Event, error) {
	var events []*model.Event
	if err := r.db.WithContext(ctx).
		Order("COALESCE(updated_at, created_at), id").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	return events, nil
}
