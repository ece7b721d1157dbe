package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// scanMalformedPermissions lists permission rows whose stored name does not
// match the resource and action columns. Such rows are never resolved into a
// permission set; the scan surfaces them so an operator can repair the data.
const scanMalformedPermissions = `
SELECT id::text, name, resource, action
FROM permissions
WHERE name <> resource || '.' || action
   OR action NOT IN ('create', 'read', 'update', 'delete')
ORDER BY resource, action`

// HandlePermissionScanTask returns the handler for TaskTypePermissionScan.
func HandlePermissionScanTask(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		rows, err := pool.Query(ctx, scanMalformedPermissions)
		if err != nil {
			return err
		}
		defer rows.Close()

		malformed := 0
		for rows.Next() {
			var id, name, resource, action string
			if err := rows.Scan(&id, &name, &resource, &action); err != nil {
				return err
			}
			malformed++
			if logger != nil {
				logger.Warn("malformed permission row",
					slog.String("permission_id", id),
					slog.String("name", name),
					slog.String("resource", resource),
					slog.String("action", action))
			}
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if logger != nil {
			logger.Info("permission integrity scan finished", slog.Int("malformed", malformed))
		}
		return nil
	}
}
