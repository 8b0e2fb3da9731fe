package collaborators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestUploadSourceClient_GetDocumentText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/uploads/42/text" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"text":"hello world"}`))
	}))
	defer srv.Close()

	client := NewUploadSourceClient(srv.URL)
	text, err := client.GetDocumentText(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello world" {
		t.Errorf("expected 'hello world', got %q", text)
	}
}

func TestUploadSourceClient_GetDocumentVisionJSON_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewUploadSourceClient(srv.URL)
	_, err := client.GetDocumentVisionJSON(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error for missing upload")
	}
}
