package content

import (
	"context"
	"log/slog"

	"github.com/DjordjeVuckovic/content-query/internal/storage"
	"github.com/google/uuid"
)

type Action string

const (
	ActionInsert  Action = "insert"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionPublish Action = "publish"
)

// ChangeLog records every write to content records.
type ChangeLog struct {
	logger *slog.Logger
}

func NewChangeLog(logger *slog.Logger) *ChangeLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangeLog{logger: logger.With("component", "changelog")}
}

// Entry logs one change and returns its identifier.
func (c *ChangeLog) Entry(ctx context.Context, action Action, contentType, id string, oldValues, newValues storage.Row) string {
	changeID := uuid.NewString()
	c.logger.InfoContext(ctx, "content change",
		"change_id", changeID,
		"action", action,
		"contenttype", contentType,
		"id", id,
		"old", oldValues,
		"new", newValues)
	return changeID
}
