package store

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
)

// ShouldNotify reports whether a notification of kind about entityID may be
// sent to userID, recording the send when it may. A repeat inside window is
// suppressed. Rows older than a day are cleaned up on the way.
func (s *Store) ShouldNotify(ctx context.Context, kind string, userID, entityID int, window time.Duration) (bool, error) {
	_, err := s.db.Delete("notification_debounce").
		Where(goqu.L("last_triggered_at < NOW() - INTERVAL '24 hours'")).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return false, wrap("clean notification debounce", err)
	}

	var debounceID int
	found, err := s.db.Insert("notification_debounce").
		Rows(goqu.Record{
			"notification_type": kind,
			"target_user_id":    userID,
			"entity_id":         entityID,
			"last_triggered_at": goqu.L("NOW()"),
		}).
		OnConflict(goqu.DoUpdate(
			"notification_type, target_user_id, entity_id",
			goqu.Record{"last_triggered_at": goqu.L("NOW()")},
		).Where(goqu.L(
			"notification_debounce.last_triggered_at < NOW() - ?::interval",
			fmt.Sprintf("%d seconds", int(window.Seconds())),
		))).
		Returning("debounce_id").
		Executor().
		ScanValContext(ctx, &debounceID)
	if err != nil {
		return false, wrap("notification debounce", err)
	}
	return found, nil
}
