package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RecentWriteTracker remembers which actor just changed a row, so the change feed
// can avoid echoing a write back to the session that made it.
type RecentWriteTracker interface {
	Record(ctx context.Context, actor uuid.UUID, table, id string)
	WasRecent(ctx context.Context, actor uuid.UUID, table, id string) bool
}

type recentWriteTracker struct {
	store  KeyValueStore
	window time.Duration
}

// NewRecentWriteTracker stores marks in store for window
func NewRecentWriteTracker(store KeyValueStore, window time.Duration) RecentWriteTracker {
	return &recentWriteTracker{store: store, window: window}
}

func recentKey(actor uuid.UUID, table, id string) string {
	return fmt.Sprintf("recent:%s:%s:%s", actor, table, id)
}

func (t *recentWriteTracker) Record(ctx context.Context, actor uuid.UUID, table, id string) {
	if err := t.store.Set(ctx, recentKey(actor, table, id), "1", t.window); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"table": table, "id": id}).Warn("failed to record recent write")
	}
}

func (t *recentWriteTracker) WasRecent(ctx context.Context, actor uuid.UUID, table, id string) bool {
	_, found, err := t.store.Get(ctx, recentKey(actor, table, id))
	return err == nil && found
}
