package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContradictionStore is the audit log of resolved fact contradictions.
type ContradictionStore struct {
	db *pgxpool.Pool
}

func NewContradictionStore(db *pgxpool.Pool) *ContradictionStore {
	return &ContradictionStore{db: db}
}

func (s *ContradictionStore) Record(ctx context.Context, c *domain.Contradiction) error {
	oldValue, err := json.Marshal(c.OldValue)
	if err != nil {
		return fmt.Errorf("marshal old value: %w", err)
	}
	newValue, err := json.Marshal(c.NewValue)
	if err != nil {
		return fmt.Errorf("marshal new value: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO fact_contradictions
		   (id, session_id, field, old_value, new_value, type, resolution, explanation, detected_at, resolved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.SessionID, string(c.Field), oldValue, newValue, string(c.Type),
		string(c.Resolution), c.Explanation, c.DetectedAt, c.ResolvedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *ContradictionStore) ListBySession(ctx context.Context, sessionID string) ([]domain.Contradiction, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, session_id, field, old_value, new_value, type, resolution, explanation, detected_at, resolved_at
		 FROM fact_contradictions WHERE session_id = $1 ORDER BY detected_at`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Contradiction
	for rows.Next() {
		var c domain.Contradiction
		var field, ctype, resolution string
		var oldValue, newValue []byte
		if err := rows.Scan(&c.ID, &c.SessionID, &field, &oldValue, &newValue, &ctype,
			&resolution, &c.Explanation, &c.DetectedAt, &c.ResolvedAt); err != nil {
			return nil, err
		}
		c.Field = domain.Field(field)
		c.Type = domain.ContradictionType(ctype)
		c.Resolution = domain.Resolution(resolution)
		c.Resolved = true
		if err := json.Unmarshal(oldValue, &c.OldValue); err != nil {
			return nil, fmt.Errorf("unmarshal old value: %w", err)
		}
		if err := json.Unmarshal(newValue, &c.NewValue); err != nil {
			return nil, fmt.Errorf("unmarshal new value: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}
