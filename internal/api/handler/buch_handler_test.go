package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hska/buch-catalog/internal/core/domain"
	"github.com/hska/buch-catalog/internal/core/ports"
	"github.com/hska/buch-catalog/internal/core/principal"
)

const testBuchID = "9f1c3a52-6a55-4c1e-8f0e-1b3c5d7e9a11"

type stubBuchService struct {
	mu sync.Mutex

	findByIDFn func(ctx context.Context, id string) (*domain.Buch, error)
	findFn     func(ctx context.Context, f ports.BuchFilter) ([]*domain.Buch, error)
	createFn   func(ctx context.Context, b *domain.Buch) (*domain.Buch, error)
	updateFn   func(ctx context.Context, b *domain.Buch, version *string) (*domain.Buch, error)
	removed    []string
}

func (s *stubBuchService) FindByID(ctx context.Context, id string) (*domain.Buch, error) {
	return s.findByIDFn(ctx, id)
}

func (s *stubBuchService) Find(ctx context.Context, f ports.BuchFilter) ([]*domain.Buch, error) {
	return s.findFn(ctx, f)
}

func (s *stubBuchService) Create(ctx context.Context, b *domain.Buch) (*domain.Buch, error) {
	return s.createFn(ctx, b)
}

func (s *stubBuchService) Update(ctx context.Context, b *domain.Buch, version *string) (*domain.Buch, error) {
	return s.updateFn(ctx, b, version)
}

func (s *stubBuchService) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, id)
	return nil
}

func storedBuch(version int) *domain.Buch {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Buch{
		ID:        testBuchID,
		Title:     "Alpha",
		Kind:      domain.KindPrint,
		Publisher: domain.PublisherA,
		Price:     11.1,
		Keywords:  []string{"JAVASCRIPT"},
		Authors:   []domain.Author{{LastName: "Doe", FirstName: "Jane"}},
		Version:   version,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func withSubject(req *http.Request, id string) *http.Request {
	return req.WithContext(principal.WithPrincipal(req.Context(), principal.Principal{SubjectID: id}))
}

const createBody = `{"title":"Alpha","kind":"PRINT","publisher":"PUBLISHER_A","price":11.1,"keywords":["JAVASCRIPT"],"authors":[{"last_name":"Doe","first_name":"Jane"}]}`

func TestBuchHandler_FindByID(t *testing.T) {
	e := newTestEcho()
	stub := &stubBuchService{
		findByIDFn: func(ctx context.Context, id string) (*domain.Buch, error) {
			if id != testBuchID {
				t.Fatalf("unexpected id %s", id)
			}
			return storedBuch(2), nil
		},
	}
	h := NewBuchHandler(stub, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/buecher/"+testBuchID, nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(testBuchID)

	if err := h.FindByID(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(headerETag); got != `"2"` {
		t.Fatalf("expected ETag \"2\", got %s", got)
	}

	var resp buchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != testBuchID || resp.Version != 2 || resp.Title != "Alpha" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp.Links.Self != "/buecher/"+testBuchID {
		t.Fatalf("unexpected self link %s", resp.Links.Self)
	}
	if resp.CreatedAt != "2026-03-01T12:00:00Z" {
		t.Fatalf("unexpected created_at %s", resp.CreatedAt)
	}
}

func TestBuchHandler_FindByID_NotModified(t *testing.T) {
	e := newTestEcho()
	stub := &stubBuchService{
		findByIDFn: func(ctx context.Context, id string) (*domain.Buch, error) { return storedBuch(2), nil },
	}
	h := NewBuchHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/buecher/"+testBuchID, nil)
	req.Header.Set(headerIfNoneMatch, `"2"`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(testBuchID)

	if err := h.FindByID(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("304 must not carry a body")
	}
}

func TestBuchHandler_FindByID_NotFound(t *testing.T) {
	e := newTestEcho()
	stub := &stubBuchService{
		findByIDFn: func(ctx context.Context, id string) (*domain.Buch, error) { return nil, domain.ErrBuchNotFound },
	}
	h := NewBuchHandler(stub, zerolog.Nop())

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/buecher/x", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("x")

	if err := h.FindByID(c); !errors.Is(err, domain.ErrBuchNotFound) {
		t.Fatalf("expected ErrBuchNotFound, got %v", err)
	}
}

func TestBuchHandler_Find(t *testing.T) {
	e := newTestEcho()
	stub := &stubBuchService{
		findFn: func(ctx context.Context, f ports.BuchFilter) ([]*domain.Buch, error) {
			if f.Title != "alp" || f.Kind != domain.KindPrint {
				t.Fatalf("unexpected filter %+v", f)
			}
			if len(f.Keywords) != 2 || f.Keywords[0] != "JAVA" || f.Keywords[1] != "SCRIPT" {
				t.Fatalf("unexpected keywords %v", f.Keywords)
			}
			return []*domain.Buch{storedBuch(0)}, nil
		},
	}
	h := NewBuchHandler(stub, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/buecher?title=alp&kind=PRINT&keyword=JAVA,SCRIPT", nil), rec)

	if err := h.Find(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp []buchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("expected a JSON array: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != testBuchID {
		t.Fatalf("unexpected list %+v", resp)
	}
}

func TestBuchHandler_Find_Empty(t *testing.T) {
	e := newTestEcho()
	stub := &stubBuchService{
		findFn: func(ctx context.Context, f ports.BuchFilter) ([]*domain.Buch, error) {
			return nil, nil
		},
	}
	h := NewBuchHandler(stub, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/buecher?title=zzz", nil), rec)

	if err := h.Find(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("expected [], got %s", got)
	}
}

func TestBuchHandler_Find_InvalidKind(t *testing.T) {
	e := newTestEcho()
	stub := &stubBuchService{
		findFn: func(ctx context.Context, f ports.BuchFilter) ([]*domain.Buch, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewBuchHandler(stub, zerolog.Nop())

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/buecher?kind=SCROLL&keyword=ok", nil), httptest.NewRecorder())

	err := h.Find(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *domain.ValidationError, got %v", err)
	}
	if len(ve.Fields) != 1 || !strings.Contains(ve.Fields["kind"], "KINDLE, PRINT") {
		t.Fatalf("unexpected fields %v", ve.Fields)
	}
}

func TestBuchHandler_Create(t *testing.T) {
	e := newTestEcho()
	stub := &stubBuchService{
		createFn: func(ctx context.Context, b *domain.Buch) (*domain.Buch, error) {
			if b.ID != "" {
				t.Fatalf("client must not choose the id")
			}
			if b.Title != "Alpha" || b.Kind != domain.KindPrint || len(b.Authors) != 1 {
				t.Fatalf("unexpected buch %+v", b)
			}
			created := *b
			created.ID = testBuchID
			return &created, nil
		},
	}
	h := NewBuchHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/buecher", strings.NewReader(createBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(withSubject(req, "admin-id"), rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderLocation); got != "http://example.com/buecher/"+testBuchID {
		t.Fatalf("unexpected Location %s", got)
	}
	if got := rec.Header().Get(headerETag); got != `"0"` {
		t.Fatalf("unexpected ETag %s", got)
	}
}

func TestBuchHandler_Create_NotJSON(t *testing.T) {
	e := newTestEcho()
	stub := &stubBuchService{
		createFn: func(ctx context.Context, b *domain.Buch) (*domain.Buch, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewBuchHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/buecher", strings.NewReader(createBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMETextPlain)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %v", err)
	}
}

func TestBuchHandler_Create_ValidationError(t *testing.T) {
	e := newTestEcho()
	stub := &stubBuchService{
		createFn: func(ctx context.Context, b *domain.Buch) (*domain.Buch, error) {
			return nil, &domain.ValidationError{Fields: map[string]string{"title": "title is required"}}
		},
	}
	h := NewBuchHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/buecher", strings.NewReader(`{"kind":"PRINT"}`))
	req.Header.Set(echo.HeaderContentType, "application/json; charset=utf-8")
	c := e.NewContext(req, httptest.NewRecorder())

	if err := h.Create(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBuchHandler_Update(t *testing.T) {
	cases := []struct {
		name    string
		ifMatch string
		want    *string
	}{
		{"quoted", `"3"`, strPtr("3")},
		{"weak", `W/"3"`, strPtr("3")},
		{"bare", `3`, strPtr("3")},
		{"missing", "", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho()
			stub := &stubBuchService{
				updateFn: func(ctx context.Context, b *domain.Buch, version *string) (*domain.Buch, error) {
					if b.ID != testBuchID {
						t.Fatalf("id must come from the path, got %q", b.ID)
					}
					switch {
					case tc.want == nil && version != nil:
						t.Fatalf("expected nil version, got %q", *version)
					case tc.want != nil && (version == nil || *version != *tc.want):
						t.Fatalf("expected version %q, got %v", *tc.want, version)
					}
					if version == nil {
						return nil, domain.ErrVersionMissing
					}
					return storedBuch(4), nil
				},
			}
			h := NewBuchHandler(stub, zerolog.Nop())

			req := httptest.NewRequest(http.MethodPut, "/buecher/"+testBuchID, strings.NewReader(createBody))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			if tc.ifMatch != "" {
				req.Header.Set(headerIfMatch, tc.ifMatch)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("id")
			c.SetParamValues(testBuchID)

			err := h.Update(c)
			if tc.want == nil {
				if !errors.Is(err, domain.ErrVersionMissing) {
					t.Fatalf("expected ErrVersionMissing, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusNoContent {
				t.Fatalf("expected 204, got %d", rec.Code)
			}
			if got := rec.Header().Get(headerETag); got != `"4"` {
				t.Fatalf("unexpected ETag %s", got)
			}
		})
	}
}

func TestBuchHandler_Update_Conflict(t *testing.T) {
	e := newTestEcho()
	stub := &stubBuchService{
		updateFn: func(ctx context.Context, b *domain.Buch, version *string) (*domain.Buch, error) {
			return nil, domain.ErrVersionConflict
		},
	}
	h := NewBuchHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPut, "/buecher/"+testBuchID, strings.NewReader(createBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(headerIfMatch, `"99"`)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(testBuchID)

	if err := h.Update(c); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestBuchHandler_Delete(t *testing.T) {
	e := newTestEcho()
	stub := &stubBuchService{}
	h := NewBuchHandler(stub, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(withSubject(httptest.NewRequest(http.MethodDelete, "/buecher/"+testBuchID, nil), "admin-id"), rec)
	c.SetParamNames("id")
	c.SetParamValues(testBuchID)

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(stub.removed) != 1 || stub.removed[0] != testBuchID {
		t.Fatalf("unexpected removals %v", stub.removed)
	}
}

func TestMatchesETag(t *testing.T) {
	cases := []struct {
		header string
		want   bool
	}{
		{`"2"`, true},
		{`W/"2"`, true},
		{`"1", "2"`, true},
		{`*`, true},
		{`"1"`, false},
		{`2`, false},
	}
	for _, tc := range cases {
		if got := matchesETag(tc.header, `"2"`); got != tc.want {
			t.Errorf("matchesETag(%q) = %v, want %v", tc.header, got, tc.want)
		}
	}
}

func strPtr(s string) *string { return &s }
