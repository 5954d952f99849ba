package tasks

import (
	"context"
	"fmt"
)

// newSQLMaintenanceTask returns the task that performs periodic database
// maintenance (VACUUM) to keep the SQLite file compact.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	return func(ctx context.Context) error {
		log := deps.Logger.With("task", "sql_maintenance")

		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "SQL maintenance completed")
		return nil
	}
}
