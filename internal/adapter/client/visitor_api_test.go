package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/wastefront/pricing-service/internal/core/domain"
)

const usersPayload = `[
	{"id": "p-1", "type": "business", "address": "1 Main St", "city": "Oak City", "card_id": "c-1", "email": "billing@acme.test"},
	{"id": "p-2", "type": "individual", "address": "2 Side St", "city": "Pineville", "card_id": "c-2", "email": ""}
]`

func TestVisitorAPIClient_FindVisitor(t *testing.T) {
	var gotToken, gotWorkshop string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotToken = r.Header.Get("x-auth-token")
		gotWorkshop = r.Header.Get("x-workshop-id")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(usersPayload))
	}))
	defer srv.Close()

	c := NewVisitorAPIClient(srv.URL, "tok", "ws", nil, zap.NewNop())

	visitor, err := c.FindVisitor(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if visitor == nil {
		t.Fatal("expected a visitor")
	}
	if visitor.City != "Oak City" || visitor.Type != domain.CustomerBusiness {
		t.Errorf("unexpected visitor %+v", visitor)
	}
	if gotToken != "tok" || gotWorkshop != "ws" {
		t.Errorf("auth headers not sent: token=%q workshop=%q", gotToken, gotWorkshop)
	}
}

func TestVisitorAPIClient_UnknownVisitor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(usersPayload))
	}))
	defer srv.Close()

	c := NewVisitorAPIClient(srv.URL, "tok", "ws", nil, zap.NewNop())

	visitor, err := c.FindVisitor(context.Background(), "p-99")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if visitor != nil {
		t.Errorf("expected nil for unknown id, got %+v", visitor)
	}
}

func TestVisitorAPIClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewVisitorAPIClient(srv.URL, "tok", "ws", nil, zap.NewNop())

	if _, err := c.FindVisitor(context.Background(), "p-1"); err == nil {
		t.Error("expected an error on upstream failure")
	}
}

// In-test cache to verify the cache short-circuits the HTTP fetch.
type stubCache struct {
	visitors map[string]*domain.Visitor
	puts     int
}

func (s *stubCache) GetVisitor(_ context.Context, id string) (*domain.Visitor, error) {
	return s.visitors[id], nil
}

func (s *stubCache) PutVisitor(_ context.Context, visitor *domain.Visitor) error {
	s.visitors[visitor.ID] = visitor
	s.puts++
	return nil
}

func (s *stubCache) Invalidate(context.Context) error {
	s.visitors = make(map[string]*domain.Visitor)
	return nil
}

func TestVisitorAPIClient_UsesCache(t *testing.T) {
	var fetches int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write([]byte(usersPayload))
	}))
	defer srv.Close()

	cache := &stubCache{visitors: make(map[string]*domain.Visitor)}
	c := NewVisitorAPIClient(srv.URL, "tok", "ws", cache, zap.NewNop())
	ctx := context.Background()

	if _, err := c.FindVisitor(ctx, "p-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.FindVisitor(ctx, "p-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fetches != 1 {
		t.Errorf("expected one upstream fetch, got %d", fetches)
	}
	if cache.puts != 1 {
		t.Errorf("expected one cache write, got %d", cache.puts)
	}
}
