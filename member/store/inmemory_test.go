package store

import (
	"context"
	"testing"

	errorskg "github.com/sweetpotato0/ai-claims/errors"
	"github.com/sweetpotato0/ai-claims/member"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(SampleProfiles()...)

	p, err := store.Profile(ctx, "LAYA-1022")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if p.Name != "Laura Nolan" {
		t.Errorf("expected Laura Nolan, got %s", p.Name)
	}

	if _, err := store.Profile(ctx, "LAYA-0000"); !errorskg.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}

	if err := store.Upsert(ctx, &member.Profile{ID: "LAYA-2000", Name: "New Member"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := store.Profile(ctx, "LAYA-2000"); err != nil {
		t.Errorf("expected upserted profile, got %v", err)
	}
	if err := store.Upsert(ctx, &member.Profile{}); err == nil {
		t.Error("expected error for profile without id")
	}

	if got := store.Lookups(); got != 3 {
		t.Errorf("expected 3 lookups, got %d", got)
	}
}
