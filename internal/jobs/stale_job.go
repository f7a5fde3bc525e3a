package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/maheshrc27/postcraft/internal/service"
)

// StaleJobSweeper fails modification jobs that never finished, so clients
// polling them always reach a terminal status.
type StaleJobSweeper struct {
	js         service.JobService
	staleAfter time.Duration
}

func NewStaleJobSweeper(js service.JobService, staleAfter time.Duration) *StaleJobSweeper {
	return &StaleJobSweeper{
		js:         js,
		staleAfter: staleAfter,
	}
}

func (c *StaleJobSweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := c.js.FailStale(ctx, c.staleAfter)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if n > 0 {
		slog.Warn("failed stale modification jobs", "count", n, "staleAfter", c.staleAfter)
	}
}
