package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vango-dev/usekit/internal/errors"
)

func TestJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Token") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"ada","stars":3}`))
	}))
	defer ts.Close()

	type repo struct {
		Name  string `json:"name"`
		Stars int    `json:"stars"`
	}
	client := New(WithHeader("X-Token", "secret"))
	got, err := JSON[repo](client, ts.URL)(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "ada" || got.Stars != 3 {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		default:
			w.Write([]byte(`not json`))
		}
	}))
	defer ts.Close()

	client := New()
	tests := []struct {
		name string
		path string
	}{
		{"status", "/missing"},
		{"decode", "/garbage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := JSON[map[string]any](client, ts.URL+tt.path)(context.Background())
			if errors.Code(err) != "U021" {
				t.Errorf("expected U021, got %v", err)
			}
		})
	}
}

func TestContextCancel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Get(ctx, ts.URL); errors.Code(err) != "U021" {
		t.Errorf("expected U021 for cancelled request, got %v", err)
	}
}
