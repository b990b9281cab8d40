package server

import (
	"context"
	"time"
)

// runSweeper purges expired refresh tokens every RefreshTokenSweepInterval.
// A zero interval disables it.
func (app *App) runSweeper(ctx context.Context) error {
	interval := app.config.RefreshTokenSweepInterval
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := app.authService.PurgeExpiredRefreshTokens(ctx); err != nil {
				app.logger.Warn(ctx, "refresh token sweep failed", "error", err)
			}
		}
	}
}
