package idp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_UpdateMetadata(t *testing.T) {
	t.Parallel()

	var (
		gotMethod string
		gotPath   string
		gotAuthz  string
		gotAPIKey string
		gotBody   map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuthz = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := NewClientWithHTTP(srv.URL, "service-key", srv.Client())
	err := c.UpdateMetadata(context.Background(), "auth0|jose", map[string]any{
		"full_name": "Jose Santos",
		"phone":     nil,
	})
	if err != nil {
		t.Fatalf("UpdateMetadata: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Fatalf("method=%q", gotMethod)
	}
	if gotPath != "/admin/users/auth0%7Cjose" && gotPath != "/admin/users/auth0|jose" {
		t.Fatalf("path=%q", gotPath)
	}
	if gotAuthz != "Bearer service-key" || gotAPIKey != "service-key" {
		t.Fatalf("authz=%q apikey=%q", gotAuthz, gotAPIKey)
	}
	md, ok := gotBody["user_metadata"].(map[string]any)
	if !ok {
		t.Fatalf("body=%v", gotBody)
	}
	if md["full_name"] != "Jose Santos" {
		t.Fatalf("full_name=%v", md["full_name"])
	}
	if v, present := md["phone"]; !present || v != nil {
		t.Fatalf("phone=%v present=%v", v, present)
	}
}

func TestClient_UpdateMetadata_Non2xxIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such user", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	c := NewClientWithHTTP(srv.URL, "k", srv.Client())
	if err := c.UpdateMetadata(context.Background(), "auth0|gone", nil); err == nil {
		t.Fatalf("expected error on 404")
	}
}

func TestClient_MissingAdminURL(t *testing.T) {
	t.Parallel()

	c := NewClient("", "k")
	if err := c.UpdateMetadata(context.Background(), "auth0|x", nil); err == nil {
		t.Fatalf("expected configuration error")
	}
}
