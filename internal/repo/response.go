package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mfreitag/meetsync/internal/domain"
)

const responseColumns = `name, name_norm, password_hash, email, availability,
		version, created_at, updated_at`

// CreateResponse inserts one identity's response row. The primary key on
// (event_id, name_norm) enforces case-insensitive name uniqueness at the
// store, backing up the service-layer check under concurrent sign-ins.
func (r *pgEventRepo) CreateResponse(ctx context.Context, eventID string, resp domain.Response) (domain.Response, error) {
	stored, err := insertResponse(ctx, r.db, eventID, resp)
	if err != nil {
		return domain.Response{}, fmt.Errorf("repo.EventRepo.CreateResponse: %w", err)
	}
	return stored, nil
}

// GetResponse retrieves one identity's response by normalized name.
func (r *pgEventRepo) GetResponse(ctx context.Context, eventID, name string) (domain.Response, error) {
	const q = `
		SELECT ` + responseColumns + `
		FROM responses
		WHERE event_id = @event_id AND name_norm = @name_norm`

	args := pgx.NamedArgs{
		"event_id":  eventID,
		"name_norm": domain.NormalizeName(name),
	}

	resp, err := scanResponse(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Response{}, fmt.Errorf("repo.EventRepo.GetResponse: %w", err)
	}
	return resp, nil
}

// ReplaceAvailability swaps the identity's whole availability snapshot in a
// single UPDATE. The per-row WHERE makes the write atomic per identity:
// concurrent writes to different identities touch different rows and
// commute, while a stale expectedVersion on the same row matches nothing
// and is reported as domain.ErrConflict.
func (r *pgEventRepo) ReplaceAvailability(ctx context.Context, eventID, name string, entries []domain.AvailabilityEntry, expectedVersion int) (domain.Response, error) {
	const q = `
		UPDATE responses
		SET availability = @availability,
		    version      = version + 1,
		    updated_at   = now()
		WHERE event_id = @event_id
		  AND name_norm = @name_norm
		  AND (@expected_version = 0 OR version = @expected_version)
		RETURNING ` + responseColumns

	if entries == nil {
		entries = []domain.AvailabilityEntry{}
	}
	availability, err := json.Marshal(entries)
	if err != nil {
		return domain.Response{}, fmt.Errorf("repo.EventRepo.ReplaceAvailability: marshal availability: %w", err)
	}

	args := pgx.NamedArgs{
		"event_id":         eventID,
		"name_norm":        domain.NormalizeName(name),
		"availability":     availability,
		"expected_version": expectedVersion,
	}

	resp, err := scanResponse(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) && expectedVersion > 0 {
			if _, getErr := r.GetResponse(ctx, eventID, name); getErr == nil {
				return domain.Response{}, fmt.Errorf("repo.EventRepo.ReplaceAvailability: %w", domain.ErrConflict)
			}
		}
		return domain.Response{}, fmt.Errorf("repo.EventRepo.ReplaceAvailability: %w", err)
	}
	return resp, nil
}

// listResponses returns all responses for an event in sign-in order.
func (r *pgEventRepo) listResponses(ctx context.Context, eventID string) ([]domain.Response, error) {
	const q = `
		SELECT ` + responseColumns + `
		FROM responses
		WHERE event_id = @event_id
		ORDER BY created_at, name_norm`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"event_id": eventID})
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	responses := []domain.Response{}
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("list responses: scan: %w", err)
		}
		responses = append(responses, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list responses: rows: %w", err)
	}
	return responses, nil
}

// insertResponse inserts a response row through any db (pool or tx).
func insertResponse(ctx context.Context, conn db, eventID string, resp domain.Response) (domain.Response, error) {
	const q = `
		INSERT INTO responses (event_id, name, name_norm, password_hash, email, availability)
		VALUES (@event_id, @name, @name_norm, @password_hash, @email, @availability)
		RETURNING ` + responseColumns

	if resp.Availability == nil {
		resp.Availability = []domain.AvailabilityEntry{}
	}
	availability, err := json.Marshal(resp.Availability)
	if err != nil {
		return domain.Response{}, fmt.Errorf("marshal availability: %w", err)
	}

	args := pgx.NamedArgs{
		"event_id":      eventID,
		"name":          resp.Name,
		"name_norm":     domain.NormalizeName(resp.Name),
		"password_hash": nullable(resp.PasswordHash),
		"email":         nullable(resp.Email),
		"availability":  availability,
	}

	stored, err := scanResponse(conn.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Response{}, fmt.Errorf("insert response: %w", err)
	}
	return stored, nil
}

// nullable maps an empty string to NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// scanResponse maps a single database row into a domain.Response.
func scanResponse(s scanner) (domain.Response, error) {
	var (
		resp         domain.Response
		nameNorm     string
		passwordHash pgtype.Text
		email        pgtype.Text
		availability []byte
	)

	err := s.Scan(&resp.Name, &nameNorm, &passwordHash, &email,
		&availability, &resp.Version, &resp.CreatedAt, &resp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Response{}, domain.ErrNotFound
		}
		return domain.Response{}, err
	}

	if passwordHash.Valid {
		resp.PasswordHash = passwordHash.String
	}
	if email.Valid {
		resp.Email = email.String
	}
	if err := json.Unmarshal(availability, &resp.Availability); err != nil {
		return domain.Response{}, fmt.Errorf("unmarshal availability: %w", err)
	}

	return resp, nil
}
