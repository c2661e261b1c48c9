package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ApplicationStore struct {
	db *pgxpool.Pool
}

func NewApplicationStore(db *pgxpool.Pool) *ApplicationStore {
	return &ApplicationStore{db: db}
}

func (s *ApplicationStore) GetByReference(ctx context.Context, referenceID string) (*domain.ApplicationStatus, error) {
	a := &domain.ApplicationStatus{}
	err := s.db.QueryRow(ctx,
		`SELECT reference_id, scheme_id, status, stage, amount, next_installment, remarks, updated_at
		 FROM applications WHERE reference_id = $1`,
		strings.ToUpper(referenceID),
	).Scan(&a.ReferenceID, &a.SchemeID, &a.Status, &a.Stage, &a.Amount, &a.NextInstallment, &a.Remarks, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *ApplicationStore) Create(ctx context.Context, a *domain.ApplicationStatus) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO applications (reference_id, scheme_id, status, stage, amount, next_installment, remarks)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING updated_at`,
		strings.ToUpper(a.ReferenceID), a.SchemeID, a.Status, a.Stage, a.Amount, a.NextInstallment, a.Remarks,
	).Scan(&a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

// MemoryApplicationStore serves status lookups from a fixed in-process
// table. It backs the service when no database is configured.
type MemoryApplicationStore struct {
	mu   sync.RWMutex
	apps map[string]domain.ApplicationStatus
}

func NewMemoryApplicationStore(apps ...domain.ApplicationStatus) *MemoryApplicationStore {
	s := &MemoryApplicationStore{apps: make(map[string]domain.ApplicationStatus, len(apps))}
	for _, a := range apps {
		s.apps[strings.ToUpper(a.ReferenceID)] = a
	}
	return s
}

// SampleApplications are the demo records shipped with the service.
func SampleApplications() []domain.ApplicationStatus {
	now := time.Now().UTC()
	return []domain.ApplicationStatus{
		{
			ReferenceID:     "PM123456",
			SchemeID:        "pm-kisan",
			Status:          "approved",
			Stage:           "disbursed",
			Amount:          2000,
			NextInstallment: "जनवरी 2025",
			UpdatedAt:       now,
		},
		{
			ReferenceID: "AW789012",
			SchemeID:    "pm-awas-gramin",
			Status:      "pending",
			Stage:       "document_verification",
			Remarks:     "दस्तावेज़ सत्यापन जारी है",
			UpdatedAt:   now,
		},
	}
}

func (s *MemoryApplicationStore) GetByReference(ctx context.Context, referenceID string) (*domain.ApplicationStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.apps[strings.ToUpper(referenceID)]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *MemoryApplicationStore) Create(ctx context.Context, a *domain.ApplicationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToUpper(a.ReferenceID)
	if _, exists := s.apps[key]; exists {
		return ErrConflict
	}
	a.UpdatedAt = time.Now().UTC()
	s.apps[key] = *a
	return nil
}
