// Package repo contains all database access logic for the MeetSync API.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mfreitag/meetsync/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows
// integration tests to pass a transaction that is rolled back after each
// test, giving free per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// EventRepo defines the persistence operations for events and their
// responses. The service layer depends on this interface, not the concrete
// Postgres implementation, which allows the service to be unit-tested with
// a mock.
type EventRepo interface {
	// Create inserts a new event (and any responses it carries) and returns
	// the persisted record with DB-generated doc id and timestamps.
	Create(ctx context.Context, event domain.Event) (domain.Event, error)

	// GetByID retrieves an event with its responses in sign-in order.
	// Returns domain.ErrNotFound if no event with that ID exists.
	GetByID(ctx context.Context, id string) (domain.Event, error)

	// Replace overwrites the event's mutable fields and its whole responses
	// collection in one transaction. expectedVersion > 0 enables optimistic
	// concurrency: a mismatch returns domain.ErrConflict; 0 means
	// last-write-wins. Returns domain.ErrNotFound for an unknown event.
	Replace(ctx context.Context, event domain.Event, expectedVersion int) (domain.Event, error)

	// CreateResponse inserts a new identity's response row. The caller is
	// responsible for uniqueness and limit checks; a duplicate normalized
	// name surfaces as an error from the unique constraint.
	CreateResponse(ctx context.Context, eventID string, r domain.Response) (domain.Response, error)

	// GetResponse retrieves one identity's response by case-insensitive name.
	// Returns domain.ErrNotFound when the identity has no response.
	GetResponse(ctx context.Context, eventID, name string) (domain.Response, error)

	// ReplaceAvailability swaps one identity's entire availability snapshot.
	// Other identities' rows are untouched, so writers to different
	// identities commute by construction. expectedVersion > 0 enables
	// same-identity conflict detection (domain.ErrConflict on mismatch);
	// 0 keeps last-write-wins.
	ReplaceAvailability(ctx context.Context, eventID, name string, entries []domain.AvailabilityEntry, expectedVersion int) (domain.Response, error)
}

// pgEventRepo is the Postgres implementation of EventRepo.
type pgEventRepo struct {
	db db
}

// NewEventRepo constructs an EventRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback
// isolation.
func NewEventRepo(db db) EventRepo {
	return &pgEventRepo{db: db}
}

const eventColumns = `doc_id, id, name, selected_dates, start_time, end_time,
		tz_value, tz_label, time_slots, response_limit, hide_responses,
		version, created_at, updated_at`

// Create inserts the event row and any response rows inside one transaction,
// so a failed write never leaves a half-created event.
func (r *pgEventRepo) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Create: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		INSERT INTO events (id, name, selected_dates, start_time, end_time,
			tz_value, tz_label, time_slots, response_limit, hide_responses)
		VALUES (@id, @name, @selected_dates, @start_time, @end_time,
			@tz_value, @tz_label, @time_slots, @response_limit, @hide_responses)
		RETURNING ` + eventColumns

	args, err := eventArgs(event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Create: %w", err)
	}

	created, err := scanEvent(tx.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Create: %w", err)
	}

	for _, resp := range event.Responses {
		stored, err := insertResponse(ctx, tx, created.ID, resp)
		if err != nil {
			return domain.Event{}, fmt.Errorf("repo.EventRepo.Create: %w", err)
		}
		created.Responses = append(created.Responses, stored)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Create: commit: %w", err)
	}
	return created, nil
}

// GetByID retrieves the event row and its responses in sign-in order.
func (r *pgEventRepo) GetByID(ctx context.Context, id string) (domain.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = @id`

	event, err := scanEvent(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.GetByID: %w", err)
	}

	event.Responses, err = r.listResponses(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.GetByID: %w", err)
	}
	return event, nil
}

// Replace overwrites mutable event fields and the whole responses collection.
// All-or-nothing at event granularity: the delete and re-insert of response
// rows happen in the same transaction as the version bump.
func (r *pgEventRepo) Replace(ctx context.Context, event domain.Event, expectedVersion int) (domain.Event, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Replace: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		UPDATE events
		SET name           = @name,
		    hide_responses = @hide_responses,
		    version        = version + 1,
		    updated_at     = now()
		WHERE id = @id
		  AND (@expected_version = 0 OR version = @expected_version)
		RETURNING ` + eventColumns

	args := pgx.NamedArgs{
		"id":               event.ID,
		"name":             event.Name,
		"hide_responses":   event.HideResponses,
		"expected_version": expectedVersion,
	}

	updated, err := scanEvent(tx.QueryRow(ctx, q, args))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) && expectedVersion > 0 {
			// Distinguish a missing event from a stale version.
			if exists, exErr := r.exists(ctx, event.ID); exErr == nil && exists {
				return domain.Event{}, fmt.Errorf("repo.EventRepo.Replace: %w", domain.ErrConflict)
			}
		}
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Replace: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM responses WHERE event_id = @id`, pgx.NamedArgs{"id": event.ID}); err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Replace: clear responses: %w", err)
	}
	for _, resp := range event.Responses {
		stored, err := insertResponse(ctx, tx, event.ID, resp)
		if err != nil {
			return domain.Event{}, fmt.Errorf("repo.EventRepo.Replace: %w", err)
		}
		updated.Responses = append(updated.Responses, stored)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Replace: commit: %w", err)
	}
	return updated, nil
}

// exists reports whether an event row with the given id is present.
func (r *pgEventRepo) exists(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = @id)`, pgx.NamedArgs{"id": id}).Scan(&found)
	return found, err
}

// eventArgs marshals the JSONB-backed fields and builds the named args for
// event inserts.
func eventArgs(event domain.Event) (pgx.NamedArgs, error) {
	dates, err := json.Marshal(event.SelectedDates)
	if err != nil {
		return nil, fmt.Errorf("marshal selected_dates: %w", err)
	}
	slots, err := json.Marshal(event.TimeSlots)
	if err != nil {
		return nil, fmt.Errorf("marshal time_slots: %w", err)
	}
	return pgx.NamedArgs{
		"id":             event.ID,
		"name":           event.Name,
		"selected_dates": dates,
		"start_time":     event.StartTime,
		"end_time":       event.EndTime,
		"tz_value":       event.Timezone.Value,
		"tz_label":       event.Timezone.Label,
		"time_slots":     slots,
		"response_limit": event.ResponseLimit, // nil becomes NULL
		"hide_responses": event.HideResponses,
	}, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanEvent maps a single database row into a domain.Event.
// Responses are loaded separately.
func scanEvent(s scanner) (domain.Event, error) {
	var (
		e     domain.Event
		docID pgtype.UUID
		dates []byte
		slots []byte
		limit pgtype.Int4
	)

	err := s.Scan(&docID, &e.ID, &e.Name, &dates, &e.StartTime, &e.EndTime,
		&e.Timezone.Value, &e.Timezone.Label, &slots, &limit,
		&e.HideResponses, &e.Version, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrNotFound
		}
		return domain.Event{}, err
	}

	e.DocID = uuid.UUID(docID.Bytes)
	if err := json.Unmarshal(dates, &e.SelectedDates); err != nil {
		return domain.Event{}, fmt.Errorf("unmarshal selected_dates: %w", err)
	}
	if err := json.Unmarshal(slots, &e.TimeSlots); err != nil {
		return domain.Event{}, fmt.Errorf("unmarshal time_slots: %w", err)
	}
	if limit.Valid {
		l := int(limit.Int32)
		e.ResponseLimit = &l
	}

	return e, nil
}
