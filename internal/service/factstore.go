package service

import (
	"errors"
	"time"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/google/uuid"
)

var ErrNoPendingContradiction = errors.New("no pending contradiction for field")

// WriteResult describes what happened to a single fact write.
type WriteResult struct {
	Accepted bool
	// Contradiction is set when this write raised a new contradiction.
	Contradiction *domain.Contradiction
	// Blocked is set when the field already had an unresolved contradiction.
	Blocked bool
}

// FactStore applies the per-field policies to a session's facts. It does no
// locking of its own; callers hold the session lock.
type FactStore struct {
	session  *domain.Session
	policies map[domain.Field]FieldPolicy
	now      func() time.Time
}

func NewFactStore(session *domain.Session, policies map[domain.Field]FieldPolicy, now func() time.Time) *FactStore {
	if now == nil {
		now = time.Now
	}
	return &FactStore{session: session, policies: policies, now: now}
}

// Write stores value for field unless it conflicts with a confirmed value.
// Unknown fields are ignored.
func (s *FactStore) Write(field domain.Field, value any, source domain.FactSource) WriteResult {
	if !domain.ValidField(string(field)) {
		return WriteResult{}
	}

	now := s.now()
	s.session.LastActivity = now

	if s.pendingFor(field) != nil {
		return WriteResult{Blocked: true}
	}

	current, ok := s.session.Facts[field]
	if !ok {
		current = &domain.Fact{Field: field}
		s.session.Facts[field] = current
		s.apply(current, value, source, now)
		return WriteResult{Accepted: true}
	}

	if !current.Confirmed {
		s.apply(current, value, source, now)
		return WriteResult{Accepted: true}
	}

	policy, ok := s.policies[field]
	if !ok {
		policy = FieldPolicy{Kind: domain.ContradictionValue}
	}

	if !policy.Conflicts(current.Value, value) {
		s.apply(current, value, source, now)
		current.Confirmed = true
		return WriteResult{Accepted: true}
	}

	c := &domain.Contradiction{
		ID:         uuid.New(),
		SessionID:  s.session.ID,
		Field:      field,
		OldValue:   current.Value,
		NewValue:   value,
		Type:       policy.Kind,
		DetectedAt: now,
	}
	s.session.Contradictions = append(s.session.Contradictions, c)
	return WriteResult{Contradiction: c}
}

// Resolve settles the oldest unresolved contradiction on field. When keepNew
// is set the contradicting value replaces the stored one. Either way the
// field ends up confirmed and accepts writes again.
func (s *FactStore) Resolve(field domain.Field, keepNew bool, explanation string) (*domain.Contradiction, error) {
	c := s.pendingFor(field)
	if c == nil {
		return nil, ErrNoPendingContradiction
	}

	now := s.now()
	s.session.LastActivity = now

	c.Resolved = true
	c.Explanation = explanation
	c.ResolvedAt = &now
	if keepNew {
		c.Resolution = domain.ResolutionUsedNew
	} else {
		c.Resolution = domain.ResolutionKeptOld
	}

	current, ok := s.session.Facts[field]
	if !ok {
		current = &domain.Fact{Field: field}
		s.session.Facts[field] = current
	}
	s.apply(current, c.KeptValue(), domain.SourceResolution, now)
	return c, nil
}

// Pending returns unresolved contradictions, oldest first.
func (s *FactStore) Pending() []*domain.Contradiction {
	var out []*domain.Contradiction
	for _, c := range s.session.Contradictions {
		if !c.Resolved {
			out = append(out, c)
		}
	}
	return out
}

func (s *FactStore) Snapshot() domain.Facts {
	return s.session.Snapshot()
}

func (s *FactStore) pendingFor(field domain.Field) *domain.Contradiction {
	for _, c := range s.session.Contradictions {
		if !c.Resolved && c.Field == field {
			return c
		}
	}
	return nil
}

func (s *FactStore) apply(f *domain.Fact, value any, source domain.FactSource, at time.Time) {
	f.Value = value
	f.Confirmed = source.Confirms()
	f.History = append(f.History, domain.FactRevision{Value: value, Source: source, At: at})
}
