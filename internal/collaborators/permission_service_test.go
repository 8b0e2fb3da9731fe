package collaborators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPermissionServiceClient_CanIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("user_id") != "1" || r.URL.Query().Get("upload_id") != "2" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"allowed":true}`))
	}))
	defer srv.Close()

	client := NewPermissionServiceClient(srv.URL)
	allowed, err := client.CanIndex(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Error("expected allowed=true")
	}
}

func TestPermissionServiceClient_CanAsk_WithoutDocumentID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("document_id") {
			t.Error("expected no document_id in query")
		}
		w.Write([]byte(`{"allowed":false}`))
	}))
	defer srv.Close()

	client := NewPermissionServiceClient(srv.URL)
	allowed, err := client.CanAsk(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Error("expected allowed=false")
	}
}

func TestPermissionServiceClient_ask_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewPermissionServiceClient(srv.URL)
	_, err := client.CanIndex(context.Background(), 1, 2)
	if err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
