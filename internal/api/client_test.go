package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/logan676/bookpost/internal/anchor"
	"github.com/logan676/bookpost/internal/underline"
)

func TestCreateUnderlineSendsBearerAndBody(t *testing.T) {
	var gotAuth, gotRequestID string
	var gotBody createUnderlineRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/documents/doc-1/underlines" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(underline.Underline{
			ID:         "u-9",
			DocumentID: "doc-1",
			Text:       gotBody.Text,
			Address:    gotBody.Address,
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Token: "secret"})
	addr := anchor.Address{Kind: anchor.KindParagraph, Chapter: 1, Paragraph: 2, Start: 4, End: 11}
	created, err := client.CreateUnderline(context.Background(), "doc-1", "gravity", addr)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID != "u-9" || created.Text != "gravity" {
		t.Fatalf("unexpected response mapping: %+v", created)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("bearer header = %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Fatal("request id header missing")
	}
	if gotBody.Address != addr {
		t.Fatalf("address not serialized faithfully: %+v", gotBody.Address)
	}
}

func TestListUnderlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/documents/doc-1/underlines" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]underline.Underline{
			{ID: "u-1", DocumentID: "doc-1", Text: "first"},
			{ID: "u-2", DocumentID: "doc-1", Text: "second", IdeaCount: 3},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Token: "secret"})
	list, err := client.ListUnderlines(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 || list[1].IdeaCount != 3 {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestUnauthorizedMapsToAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Token: "expired"})
	_, err := client.ListIdeas(context.Background(), "u-1")
	if !errors.Is(err, underline.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestServerErrorMapsToUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "shard down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Token: "secret"})
	err := client.DeleteUnderline(context.Background(), "u-1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestTransportErrorMapsToUnavailable(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1", Token: "secret"})
	if err := client.DeleteIdea(context.Background(), "i-1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestAuthenticatedReflectsToken(t *testing.T) {
	if NewClient(Config{BaseURL: "http://example.invalid"}).Authenticated() {
		t.Fatal("tokenless client should report unauthenticated")
	}
	if !NewClient(Config{BaseURL: "http://example.invalid", Token: "t"}).Authenticated() {
		t.Fatal("client with token should report authenticated")
	}
}
