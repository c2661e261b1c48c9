package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Harshitk-cp/sahai/internal/catalog"
	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockConversations struct {
	mock.Mock
}

func (m *mockConversations) Turn(ctx context.Context, req domain.TurnRequest) (*domain.TurnResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*domain.TurnResponse)
	return resp, args.Error(1)
}

func (m *mockConversations) Session(id string, withHistory bool) (*service.SessionView, error) {
	args := m.Called(id, withHistory)
	view, _ := args.Get(0).(*service.SessionView)
	return view, args.Error(1)
}

func (m *mockConversations) Contradictions(id string) ([]domain.Contradiction, error) {
	args := m.Called(id)
	list, _ := args.Get(0).([]domain.Contradiction)
	return list, args.Error(1)
}

func (m *mockConversations) ResolveContradiction(ctx context.Context, sessionID string, field domain.Field, keepNew bool, explanation string) (*domain.Contradiction, error) {
	args := m.Called(ctx, sessionID, field, keepNew, explanation)
	c, _ := args.Get(0).(*domain.Contradiction)
	return c, args.Error(1)
}

func (m *mockConversations) EndSession(id string) bool {
	return m.Called(id).Bool(0)
}

func newRouter(conv Conversations, c *catalog.Catalog) *chi.Mux {
	turns := NewTurnHandler(conv)
	sessions := NewSessionHandler(conv)
	r := chi.NewRouter()
	r.Post("/v1/turns", turns.Create)
	r.Route("/v1/sessions/{id}", func(r chi.Router) {
		r.Get("/", sessions.Get)
		r.Delete("/", sessions.Delete)
		r.Get("/contradictions", sessions.Contradictions)
		r.Post("/contradictions/resolve", sessions.Resolve)
	})
	if c != nil {
		h := NewCatalogHandler(c)
		r.Get("/v1/catalog", h.List)
		r.Get("/v1/catalog/{id}", h.Get)
	}
	return r
}

func confidence(v float64) *float64 { return &v }

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTurnCreate(t *testing.T) {
	conv := new(mockConversations)
	conv.On("Turn", mock.Anything, domain.TurnRequest{SessionID: "s1", Text: "नमस्ते", Confidence: confidence(0.8)}).
		Return(&domain.TurnResponse{Reply: "नमस्ते!", SessionID: "s1", Facts: domain.Facts{}, ToolsInvoked: []string{}}, nil)

	rec := do(t, newRouter(conv, nil), http.MethodPost, "/v1/turns", `{"session_id":" s1 ","text":"नमस्ते","confidence":0.8}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "नमस्ते!", got["reply"])
	assert.Equal(t, "s1", got["session_id"])
	assert.Equal(t, false, got["needs_clarification"])
	assert.NotContains(t, got, "Transitions")
	conv.AssertExpectations(t)
}

func TestTurnCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"text":`, http.StatusBadRequest},
		{"missing text", `{"session_id":"s1"}`, http.StatusBadRequest},
		{"unknown field", `{"text":"x","lang":"hi"}`, http.StatusBadRequest},
		{"two objects", `{"text":"x"}{"text":"y"}`, http.StatusBadRequest},
		{"confidence out of range", `{"text":"x","confidence":1.5}`, http.StatusBadRequest},
		{"too long", `{"text":"` + strings.Repeat("अ", maxTextRunes+1) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := new(mockConversations)
			rec := do(t, newRouter(conv, nil), http.MethodPost, "/v1/turns", tt.body)
			assert.Equal(t, tt.want, rec.Code)
			conv.AssertNotCalled(t, "Turn", mock.Anything, mock.Anything)
		})
	}
}

func TestTurnCreateEmptyTextIsATurn(t *testing.T) {
	conv := new(mockConversations)
	conv.On("Turn", mock.Anything, domain.TurnRequest{Text: ""}).
		Return(&domain.TurnResponse{Reply: "मैंने कुछ नहीं सुना", SessionID: "new"}, nil)

	rec := do(t, newRouter(conv, nil), http.MethodPost, "/v1/turns", `{"text":""}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	conv.AssertExpectations(t)
}

func TestTurnCreateExplicitZeroConfidence(t *testing.T) {
	conv := new(mockConversations)
	conv.On("Turn", mock.Anything, domain.TurnRequest{Text: "मेरी उम्र 45 साल", Confidence: confidence(0)}).
		Return(&domain.TurnResponse{Reply: "क्या आपने यह कहा", SessionID: "new", NeedsClarification: true}, nil)

	rec := do(t, newRouter(conv, nil), http.MethodPost, "/v1/turns", `{"text":"मेरी उम्र 45 साल","confidence":0}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	conv.AssertExpectations(t)
}

func TestTurnCreateCancelled(t *testing.T) {
	conv := new(mockConversations)
	conv.On("Turn", mock.Anything, mock.Anything).Return(nil, context.Canceled)

	rec := do(t, newRouter(conv, nil), http.MethodPost, "/v1/turns", `{"text":"x"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSessionGet(t *testing.T) {
	conv := new(mockConversations)
	conv.On("Session", "s1", true).Return(&service.SessionView{ID: "s1", HistoryLength: 2}, nil)
	conv.On("Session", "gone", false).Return(nil, service.ErrSessionNotFound)
	r := newRouter(conv, nil)

	rec := do(t, r, http.MethodGet, "/v1/sessions/s1?history=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"history_length":2`)

	rec = do(t, r, http.MethodGet, "/v1/sessions/gone", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	conv.AssertExpectations(t)
}

func TestSessionDelete(t *testing.T) {
	conv := new(mockConversations)
	conv.On("EndSession", "s1").Return(true)
	conv.On("EndSession", "s2").Return(false)
	r := newRouter(conv, nil)

	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodDelete, "/v1/sessions/s1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/v1/sessions/s2", "").Code)
}

func TestSessionContradictions(t *testing.T) {
	conv := new(mockConversations)
	conv.On("Contradictions", "s1").Return([]domain.Contradiction{
		{SessionID: "s1", Field: domain.FieldAge, OldValue: 45, NewValue: 50},
	}, nil)

	rec := do(t, newRouter(conv, nil), http.MethodGet, "/v1/sessions/s1/contradictions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got contradictionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Contradictions, 1)
	assert.Equal(t, domain.FieldAge, got.Contradictions[0].Field)
}

func TestSessionResolve(t *testing.T) {
	t.Run("resolved", func(t *testing.T) {
		conv := new(mockConversations)
		conv.On("ResolveContradiction", mock.Anything, "s1", domain.FieldAge, true, "caller confirmed").
			Return(&domain.Contradiction{Field: domain.FieldAge, Resolved: true, Resolution: domain.ResolutionUsedNew}, nil)

		rec := do(t, newRouter(conv, nil), http.MethodPost, "/v1/sessions/s1/contradictions/resolve",
			`{"field":"age","keep_new":true,"explanation":"caller confirmed"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"resolution":"used_new"`)
		conv.AssertExpectations(t)
	})

	t.Run("default explanation", func(t *testing.T) {
		conv := new(mockConversations)
		conv.On("ResolveContradiction", mock.Anything, "s1", domain.FieldIncome, false, "resolved via api").
			Return(&domain.Contradiction{Field: domain.FieldIncome}, nil)

		rec := do(t, newRouter(conv, nil), http.MethodPost, "/v1/sessions/s1/contradictions/resolve", `{"field":"income"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		conv.AssertExpectations(t)
	})

	t.Run("errors map to status codes", func(t *testing.T) {
		conv := new(mockConversations)
		conv.On("ResolveContradiction", mock.Anything, "s1", domain.FieldAge, false, mock.Anything).
			Return(nil, service.ErrNoPendingContradiction)
		conv.On("ResolveContradiction", mock.Anything, "gone", domain.FieldAge, false, mock.Anything).
			Return(nil, service.ErrSessionNotFound)
		r := newRouter(conv, nil)

		assert.Equal(t, http.StatusConflict,
			do(t, r, http.MethodPost, "/v1/sessions/s1/contradictions/resolve", `{"field":"age"}`).Code)
		assert.Equal(t, http.StatusNotFound,
			do(t, r, http.MethodPost, "/v1/sessions/gone/contradictions/resolve", `{"field":"age"}`).Code)
		assert.Equal(t, http.StatusBadRequest,
			do(t, r, http.MethodPost, "/v1/sessions/s1/contradictions/resolve", `{"field":"shoe_size"}`).Code)
	})
}

func TestCatalogHandlers(t *testing.T) {
	c, err := catalog.Load(context.Background(), catalog.EmbeddedSource{})
	require.NoError(t, err)
	r := newRouter(new(mockConversations), c)

	t.Run("list all", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/v1/catalog", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var got catalogListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, c.Len(), got.Count)
	})

	t.Run("by category", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/v1/catalog?category=pension", "")
		var got catalogListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.NotEmpty(t, got.Schemes)
		for _, e := range got.Schemes {
			assert.Equal(t, "pension", e.Category)
		}
	})

	t.Run("unknown category is empty, not null", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/v1/catalog?category=space", "")
		assert.Contains(t, rec.Body.String(), `"schemes":[]`)
	})

	t.Run("search", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/v1/catalog?q=kisan", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var got catalogSearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.NotEmpty(t, got.Results)
		assert.Equal(t, "pm-kisan", got.Results[0].Entry.ID)
	})

	t.Run("search with category and limit", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/v1/catalog?q=pension&category=pension&limit=1", "")
		var got catalogSearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got.Results, 1)
		assert.Equal(t, "pension", got.Results[0].Entry.Category)
	})

	t.Run("bad limit", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/v1/catalog?q=x&limit=0", "").Code)
	})

	t.Run("get", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/v1/catalog/ujjwala", "").Code)
		assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/v1/catalog/nope", "").Code)
	})
}
