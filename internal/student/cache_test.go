package student

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	active := Student{StudentID: "S001", RFIDTag: "TAG1"}
	deleted := Student{StudentID: "S002", RFIDTag: "TAG2", DeletedAt: &now}

	c := NewMemoryCache()
	c.Upsert(ctx, active)
	c.Upsert(ctx, deleted)
	c.Upsert(ctx, Student{StudentID: "S003"}) // no tag, ignored

	if got, ok := c.GetByTag(ctx, "TAG1"); !ok || got.StudentID != "S001" {
		t.Errorf("GetByTag(TAG1) = %v, %v; want S001, true", got, ok)
	}
	if _, ok := c.GetByTag(ctx, "TAG2"); ok {
		t.Error("soft-deleted student served from cache")
	}
	if _, ok := c.GetByTag(ctx, "TAG3"); ok {
		t.Error("unknown tag served from cache")
	}

	// A re-issued tag replaces the stale owner.
	c.Upsert(ctx, Student{StudentID: "S004", RFIDTag: "TAG1"})
	if got, _ := c.GetByTag(ctx, "TAG1"); got.StudentID != "S004" {
		t.Errorf("GetByTag(TAG1) after reissue = %s, want S004", got.StudentID)
	}

	c.Evict(ctx, "TAG1")
	if _, ok := c.GetByTag(ctx, "TAG1"); ok {
		t.Error("evicted tag still served")
	}
}
