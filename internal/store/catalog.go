package store

import (
	"context"
	"errors"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogStore reads the catalog from Postgres. The localized text and
// eligibility rules live in JSONB columns.
type CatalogStore struct {
	db *pgxpool.Pool
}

func NewCatalogStore(db *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) Load(ctx context.Context) ([]domain.CatalogEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, category, description, benefit, eligibility, documents,
		        application_url, helpline, tags
		 FROM catalog_entries ORDER BY position, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.CatalogEntry
	for rows.Next() {
		var e domain.CatalogEntry
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Category, &e.Description, &e.Benefit, &e.Eligibility,
			&e.Documents, &e.ApplicationURL, &e.Helpline, &e.Tags,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Upsert writes one entry at the given display position.
func (s *CatalogStore) Upsert(ctx context.Context, position int, e domain.CatalogEntry) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO catalog_entries (id, position, name, category, description, benefit, eligibility,
		                              documents, application_url, helpline, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO UPDATE SET
		   position = EXCLUDED.position,
		   name = EXCLUDED.name,
		   category = EXCLUDED.category,
		   description = EXCLUDED.description,
		   benefit = EXCLUDED.benefit,
		   eligibility = EXCLUDED.eligibility,
		   documents = EXCLUDED.documents,
		   application_url = EXCLUDED.application_url,
		   helpline = EXCLUDED.helpline,
		   tags = EXCLUDED.tags,
		   updated_at = NOW()`,
		e.ID, position, e.Name, e.Category, e.Description, e.Benefit, e.Eligibility,
		e.Documents, e.ApplicationURL, e.Helpline, e.Tags,
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
