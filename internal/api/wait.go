package api

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
)

// WaitReady polls the vendor listing until the service answers or the
// timeout elapses. It is meant for scripts and start-up, not for retrying
// user operations.
func (c *Client) WaitReady(ctx context.Context, timeout time.Duration) error {
	attempts := uint(timeout.Seconds())
	if attempts == 0 {
		attempts = 1
	}

	return retry.Do(
		func() error {
			_, _, err := c.GetRaw(ctx, PathVendors)
			var se *ServiceError
			if errors.As(err, &se) {
				// Any HTTP answer means the service is up.
				return nil
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(1*time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}
