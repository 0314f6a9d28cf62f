package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"LiquiMind/internal/model"
)

func TestMemoryStore_IdenticalBytesSameID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id1, err := s.Put(ctx, []byte(`{"name":"a"}`))
	if err != nil {
		t.Fatal(err)
	}
	id2, err := s.Put(ctx, []byte(`{"name":"a"}`))
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("ids differ: %s vs %s", id1, id2)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 blob, got %d", s.Len())
	}

	got, err := s.Get(ctx, id1)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"name":"a"}` {
		t.Errorf("unexpected blob %q", got)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "sha256-00")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestContentID_Deterministic(t *testing.T) {
	if ContentID([]byte("x")) != ContentID([]byte("x")) {
		t.Error("content id not deterministic")
	}
	if ContentID([]byte("x")) == ContentID([]byte("y")) {
		t.Error("different bytes share an id")
	}
}

func TestIPFSStore_PutAndGet(t *testing.T) {
	var added string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v0/add":
			if r.URL.Query().Get("cid-version") != "1" {
				t.Errorf("expected cid-version=1, got %q", r.URL.RawQuery)
			}
			f, _, err := r.FormFile("file")
			if err != nil {
				t.Errorf("form file: %v", err)
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			data, _ := io.ReadAll(f)
			added = string(data)
			_, _ = io.WriteString(w, `{"Name":"metadata.json","Hash":"bafytest","Size":"12"}`)
		case "/api/v0/cat":
			if r.URL.Query().Get("arg") != "bafytest" {
				http.Error(w, "unknown cid", http.StatusInternalServerError)
				return
			}
			_, _ = io.WriteString(w, added)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := NewIPFSStore(srv.URL + "/")
	id, err := s.Put(context.Background(), []byte(`{"name":"a"}`))
	if err != nil {
		t.Fatal(err)
	}
	if id != "bafytest" {
		t.Errorf("id = %q", id)
	}
	data, err := s.Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"name":"a"}` {
		t.Errorf("cat returned %q", data)
	}
}

func TestIPFSStore_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "daemon not running", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewIPFSStore(srv.URL).Put(context.Background(), []byte("x"))
	if !errors.Is(err, model.ErrCollaboratorUnavailable) {
		t.Fatalf("expected ErrCollaboratorUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("expected status in error, got %v", err)
	}
}
