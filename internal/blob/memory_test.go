package blob

import (
	"context"
	"errors"
	"testing"

	"github.com/storylingo/storylingo/internal/common"
)

type doc struct {
	Title string `json:"title"`
	N     int    `json:"n"`
}

// TestMemoryStoreRoundTrip covers upload, exists, download and the
// missing-blob error.
func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.UploadJSON(ctx, "Users/story_1/manifest.json", doc{Title: "El Faro", N: 10}); err != nil {
		t.Fatalf("UploadJSON: %v", err)
	}

	ok, err := s.Exists(ctx, "Users/story_1/manifest.json")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v; want true", ok, err)
	}
	ok, err = s.Exists(ctx, "Users/story_1/final.json")
	if err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v; want false", ok, err)
	}

	var got doc
	if err := s.DownloadJSON(ctx, "Users/story_1/manifest.json", &got); err != nil {
		t.Fatalf("DownloadJSON: %v", err)
	}
	if got.Title != "El Faro" || got.N != 10 {
		t.Errorf("round trip mangled the document: %+v", got)
	}

	err = s.DownloadJSON(ctx, "Users/story_1/nope.json", &got)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing blob, got %v", err)
	}
}

// TestMemoryStoreList verifies prefix filtering and sorted output.
func TestMemoryStoreList(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, name := range []string{
		"Users/story_1/chunks/chunk_2.json",
		"Users/story_1/chunks/chunk_1.json",
		"Users/story_1/manifest.json",
		"Users/story_2/manifest.json",
	} {
		if err := s.UploadJSON(ctx, name, doc{}); err != nil {
			t.Fatalf("UploadJSON %s: %v", name, err)
		}
	}

	names, err := s.List(ctx, "Users/story_1/chunks/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 2 || names[0] != "Users/story_1/chunks/chunk_1.json" {
		t.Errorf("List = %v, want the two chunks sorted", names)
	}

	empty, err := s.List(ctx, "Users/story_9/")
	if err != nil {
		t.Fatalf("List empty: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("List on unused prefix = %v, want none", empty)
	}
}

// TestMemoryStoreDeletePrefix verifies only the prefix is removed.
func TestMemoryStoreDeletePrefix(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, name := range []string{
		"Users/story_1/manifest.json",
		"Users/story_1/final/story_story_1.json",
		"Users/story_2/manifest.json",
	} {
		if err := s.UploadJSON(ctx, name, doc{}); err != nil {
			t.Fatalf("UploadJSON %s: %v", name, err)
		}
	}

	if err := s.DeletePrefix(ctx, "Users/story_1/"); err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}
	if ok, _ := s.Exists(ctx, "Users/story_1/manifest.json"); ok {
		t.Error("story_1 manifest survived DeletePrefix")
	}
	if ok, _ := s.Exists(ctx, "Users/story_2/manifest.json"); !ok {
		t.Error("story_2 manifest was deleted by a foreign prefix")
	}

	// deleting nothing is fine
	if err := s.DeletePrefix(ctx, "Users/story_9/"); err != nil {
		t.Errorf("DeletePrefix on empty prefix: %v", err)
	}
}
