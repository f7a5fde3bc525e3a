package client

import (
	"context"
	"time"

	"github.com/maheshrc27/postcraft/internal/transfer"
)

const DefaultPollInterval = 2 * time.Second

// WaitForJob polls a modification job until it completes or fails. No request
// is made after a terminal status, and the loop stops when ctx is done.
func (c *Client) WaitForJob(ctx context.Context, jobID string, interval time.Duration) (*transfer.JobStatusResponse, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := c.JobStatus(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if status.Status.Terminal() {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
