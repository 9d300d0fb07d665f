package congressmap

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/agentstation/congressmap/pkg/constants"
	"github.com/agentstation/congressmap/pkg/errors"
	"github.com/agentstation/congressmap/pkg/logging"
)

var _ AutoUpdater = (*client)(nil)

// AutoUpdater runs Update on a fixed interval in the background.
type AutoUpdater interface {
	// AutoUpdatesOn starts the interval loop, replacing any running one.
	AutoUpdatesOn() error

	// AutoUpdatesOff stops the loop and waits for an in-flight run.
	AutoUpdatesOff() error
}

// scheduler is one running interval loop.
type scheduler struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *scheduler) stop() {
	s.cancel()
	<-s.done
}

// AutoUpdatesOn starts running Update every configured interval. The first
// run happens one interval from now.
func (c *client) AutoUpdatesOn() error {
	interval := c.options.autoUpdateInterval
	if interval <= 0 {
		return errors.NewValidationError("auto update interval", interval, "must be positive")
	}

	c.schedMu.Lock()
	defer c.schedMu.Unlock()
	if c.sched != nil {
		c.sched.stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &scheduler{cancel: cancel, done: make(chan struct{})}
	c.sched = s
	go c.runEvery(ctx, interval, s.done)
	return nil
}

// AutoUpdatesOff stops interval updates. It is safe to call when none run.
func (c *client) AutoUpdatesOff() error {
	c.schedMu.Lock()
	defer c.schedMu.Unlock()
	if c.sched != nil {
		c.sched.stop()
		c.sched = nil
	}
	return nil
}

func (c *client) runEvery(ctx context.Context, interval time.Duration, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger := logging.Default().With().Dur("interval", interval).Logger()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		runCtx, cancel := context.WithTimeout(ctx, constants.UpdateTimeout)
		result, err := c.Update(runCtx)
		cancel()

		switch {
		case err == nil:
			logger.Debug().Str("run_id", result.RunID).Msg("Interval update finished")
		case stderrors.Is(err, context.Canceled):
			return
		case errors.IsNotPublished(err):
			// Withheld feeds leave the published state alone; the next tick retries.
			logger.Warn().Err(err).Msg("Interval update withheld the feed")
		default:
			logger.Error().Err(err).Msg("Interval update failed")
		}
	}
}
