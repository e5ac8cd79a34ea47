package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWSTokenAuth_CopiesQueryTokenIntoHeader(t *testing.T) {
	var gotAuth string
	next := func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}
	passthrough := func(next http.Handler) http.Handler { return next }

	handler := wsTokenAuth(passthrough, next)

	req := httptest.NewRequest(http.MethodGet, "/ws?token=abc123", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if gotAuth != "Bearer abc123" {
		t.Fatalf("expected Authorization header \"Bearer abc123\", got %q", gotAuth)
	}
}

func TestWSTokenAuth_LeavesExistingHeaderWhenNoToken(t *testing.T) {
	var gotAuth string
	next := func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}
	passthrough := func(next http.Handler) http.Handler { return next }

	handler := wsTokenAuth(passthrough, next)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Bearer from-header")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if gotAuth != "Bearer from-header" {
		t.Fatalf("expected original Authorization header to survive, got %q", gotAuth)
	}
}
