package postgres

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vibenet/backend/api"
)

func TestPostAPIPost_NilReactions(t *testing.T) {
	// Rows created before any reaction store a NULL jsonb column. The
	// API always serves an object, never null.
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	p := post{
		ID:          7,
		AuthorEmail: "alice@example.com",
		AuthorName:  "Alice",
		PostText:    "hello",
		CreatedAt:   created,
	}

	want := api.Post{
		ID:          7,
		AuthorEmail: "alice@example.com",
		AuthorName:  "Alice",
		Text:        "hello",
		CreatedAt:   created,
		Reactions:   map[string]int{},
	}
	if diff := cmp.Diff(want, p.APIPost()); diff != "" {
		t.Errorf("APIPost() mismatch (-want +got):\n%s", diff)
	}
}
