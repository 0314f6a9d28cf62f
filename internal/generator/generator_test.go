package generator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"LiquiMind/internal/model"
)

func TestChatClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Errorf("authorization = %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "referral") {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"A shiny badge"}}]}`)
	}))
	defer srv.Close()

	c := NewChatClient(ChatConfig{APIKey: "k", BaseURL: srv.URL})
	got, err := c.Generate(context.Background(), "Create unique NFT metadata for referral")
	if err != nil {
		t.Fatal(err)
	}
	if got != "A shiny badge" {
		t.Errorf("got %q", got)
	}
}

func TestChatClient_ErrorStatusIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewChatClient(ChatConfig{BaseURL: srv.URL}).Generate(context.Background(), "p")
	if !errors.Is(err, model.ErrCollaboratorUnavailable) {
		t.Errorf("expected ErrCollaboratorUnavailable, got %v", err)
	}
}

func TestTemplate_IncludesPrompt(t *testing.T) {
	got, err := Template{}.Generate(context.Background(), " for referral ")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(got, "for referral") {
		t.Errorf("got %q", got)
	}
}
