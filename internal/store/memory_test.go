package store_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/teleroom/teleroom/internal/store"
)

func TestAppendAssignsIDs(t *testing.T) {
	m := store.NewMemory(0)
	ctx := context.Background()

	first := store.Message{UserID: 100, Content: "hello", Kind: store.KindText}
	second := store.Message{UserID: 200, Content: "hi", Kind: store.KindText}

	if err := m.Append(ctx, "1", &first); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := m.Append(ctx, "1", &second); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if first.ID == 0 || second.ID == 0 {
		t.Fatal("Append did not assign message ids")
	}
	if second.ID <= first.ID {
		t.Errorf("Expected increasing ids, got %d then %d", first.ID, second.ID)
	}
	if first.CreatedAt.IsZero() {
		t.Error("Append did not stamp CreatedAt")
	}
}

func TestRecentReturnsOldestFirst(t *testing.T) {
	m := store.NewMemory(0)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		msg := store.Message{UserID: 100, Content: strconv.Itoa(i), Kind: store.KindText}
		if err := m.Append(ctx, "1", &msg); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := m.Recent(ctx, "1", 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(got))
	}
	for i, want := range []string{"2", "3", "4"} {
		if got[i].Content != want {
			t.Errorf("Position %d: expected content %q, got %q", i, want, got[i].Content)
		}
	}
}

func TestHistoryCapTrimsOldest(t *testing.T) {
	m := store.NewMemory(2)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		msg := store.Message{UserID: 100, Content: strconv.Itoa(i)}
		m.Append(ctx, "1", &msg)
	}

	got, _ := m.Recent(ctx, "1", 0)
	if len(got) != 2 {
		t.Fatalf("Expected history capped at 2, got %d", len(got))
	}
	if got[0].Content != "2" || got[1].Content != "3" {
		t.Errorf("Expected newest two messages to survive, got %v", got)
	}
}

func TestRoomsAreIndependent(t *testing.T) {
	m := store.NewMemory(0)
	ctx := context.Background()

	msgA := store.Message{UserID: 100, Content: "room one"}
	msgB := store.Message{UserID: 100, Content: "room two"}
	m.Append(ctx, "1", &msgA)
	m.Append(ctx, "2", &msgB)

	got, _ := m.Recent(ctx, "1", 0)
	if len(got) != 1 || got[0].Content != "room one" {
		t.Errorf("Room 1 history polluted: %v", got)
	}
}
