package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRobotsGateAllowsWhenPathNotDisallowed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	}))
	defer srv.Close()

	gate := NewRobotsGate(srv.Client())
	allowed, err := gate.CanFetch(context.Background(), srv.URL+"/docs/page", "test-agent")
	if err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if !allowed {
		t.Error("expected /docs/page to be allowed")
	}
}

func TestRobotsGateDisallowsBlockedPath(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	}))
	defer srv.Close()

	gate := NewRobotsGate(srv.Client())
	allowed, err := gate.CanFetch(context.Background(), srv.URL+"/private/secret", "test-agent")
	if err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if allowed {
		t.Error("expected /private/secret to be disallowed")
	}
}

func TestRobotsGateCachesPerHost(t *testing.T) {
	t.Parallel()

	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	}))
	defer srv.Close()

	gate := NewRobotsGate(srv.Client())
	ctx := context.Background()
	if _, err := gate.CanFetch(ctx, srv.URL+"/a", "test-agent"); err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if _, err := gate.CanFetch(ctx, srv.URL+"/b", "test-agent"); err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if fetches != 1 {
		t.Errorf("expected robots.txt to be fetched once, got %d fetches", fetches)
	}
}

func TestRobotsGateAllowsOnFetchFailure(t *testing.T) {
	t.Parallel()

	gate := NewRobotsGate(http.DefaultClient)
	allowed, err := gate.CanFetch(context.Background(), "http://127.0.0.1:0/page", "test-agent")
	if err == nil {
		t.Fatal("expected an error fetching from an unreachable host")
	}
	if !allowed {
		t.Error("caller contract: an inaccessible robots.txt should report allowed=true alongside the error")
	}
}
