package notes

import (
	"context"
	"errors"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Note{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestList_FiltersBySubject(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	seed := []Note{
		{UserID: 1, Title: "Trees", Subject: "DSA", Content: "binary trees"},
		{UserID: 1, Title: "Thermo", Subject: "Physics", Content: "entropy"},
		{UserID: 2, Title: "Graphs", Subject: "DSA", Content: "bfs"},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := repo.List(ctx, 1, "DSA")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Trees" {
		t.Fatalf("unexpected result: %+v", got)
	}

	all, err := repo.List(ctx, 1, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 notes for user 1, got %d", len(all))
	}
}

func TestDelete_ScopedToOwner(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	n := Note{UserID: 3, Title: "Mine", Content: "secret"}
	if err := repo.Create(ctx, &n); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := repo.Delete(ctx, 4, n.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not-found for foreign delete, got %v", err)
	}
	if err := repo.Delete(ctx, 3, n.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestListCandidates_MapsNotes(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	n := Note{UserID: 5, Title: "Heaps", Subject: "DSA", Content: "heapify in O(n)"}
	if err := repo.Create(ctx, &n); err != nil {
		t.Fatalf("seed: %v", err)
	}

	items, err := repo.ListCandidates(ctx, 5)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(items))
	}
	if items[0].Title != "Heaps" || items[0].Body != "heapify in O(n)" {
		t.Fatalf("unexpected candidate: %+v", items[0])
	}
}
