// Package connect retries the startup ping of a backing service with exponential backoff.
package connect

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/bookmarks-api/internal/logger"
)

// Policy defines how long and how often a backend is pinged before giving up.
type Policy struct {
	ConnectTimeout time.Duration // total time allowed for attempts (ex: 30s)
	RetryInterval  time.Duration // initial wait between attempts, doubles each time (ex: 1s)
	MaxWait        time.Duration // cap on the wait between attempts (ex: 10s)
	PingTimeout    time.Duration // timeout for each attempt (ex: 5s)
	WarnThreshold  int           // attempts logged as warnings before switching to errors
}

// Validate reports the first invalid setting.
func (p Policy) Validate() error {
	switch {
	case p.ConnectTimeout <= 0:
		return fmt.Errorf("ConnectTimeout must be > 0, got %v", p.ConnectTimeout)
	case p.RetryInterval <= 0:
		return fmt.Errorf("RetryInterval must be > 0, got %v", p.RetryInterval)
	case p.MaxWait <= 0:
		return fmt.Errorf("MaxWait must be > 0, got %v", p.MaxWait)
	case p.PingTimeout <= 0:
		return fmt.Errorf("PingTimeout must be > 0, got %v", p.PingTimeout)
	case p.WarnThreshold < 0:
		return fmt.Errorf("WarnThreshold must be >= 0, got %d", p.WarnThreshold)
	}
	return nil
}

// PingFunc checks a backend once.
type PingFunc func(ctx context.Context) error

// Backend names the service being reached, for logs and errors.
type Backend struct {
	Name string // ex: "postgres", "redis"
	Addr string // redacted address, never a DSN with credentials
}

// WithRetry calls ping until it succeeds, ctx is done or the policy's ConnectTimeout elapses.
func WithRetry(ctx context.Context, b Backend, p Policy, ping PingFunc, log logger.Logger) error {
	if err := p.Validate(); err != nil {
		log.Error("invalid connect policy", logger.String("backend", b.Name), logger.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.ConnectTimeout)
	defer cancel()

	cl := &connectionLogger{logger: log, backend: b}
	cl.logStart(p.ConnectTimeout)

	attempt := 0
	wait := p.RetryInterval
	for {
		attempt++

		pingCtx, pingCancel := context.WithTimeout(ctx, p.PingTimeout)
		err := ping(pingCtx)
		pingCancel()

		if err == nil {
			cl.logSuccess(attempt, p.ConnectTimeout-timeLeft(ctx))
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			cl.logTimeout(attempt, p.ConnectTimeout, err)
			return fmt.Errorf("%s unavailable at %s after %d attempts (timeout: %v): %w",
				b.Name, b.Addr, attempt, p.ConnectTimeout, err)

		case <-timer.C:
			cl.logRetry(attempt, timeLeft(ctx), wait, p.WarnThreshold, err)
			wait *= 2
			if wait > p.MaxWait {
				wait = p.MaxWait
			}
		}
	}
}

type connectionLogger struct {
	logger  logger.Logger
	backend Backend
}

func (cl *connectionLogger) logStart(timeout time.Duration) {
	cl.logger.Info("connecting to "+cl.backend.Name,
		logger.String("addr", cl.backend.Addr),
		logger.Duration("timeout", timeout))
}

func (cl *connectionLogger) logSuccess(attempts int, elapsed time.Duration) {
	if attempts > 1 {
		cl.logger.Warn("connected to "+cl.backend.Name+" after retry",
			logger.String("addr", cl.backend.Addr),
			logger.Int("attempts", attempts),
			logger.Duration("elapsed", elapsed))
		return
	}
	cl.logger.Info("connected to "+cl.backend.Name, logger.String("addr", cl.backend.Addr))
}

func (cl *connectionLogger) logTimeout(attempts int, timeout time.Duration, err error) {
	cl.logger.Error(cl.backend.Name+" unavailable, giving up",
		logger.String("addr", cl.backend.Addr),
		logger.Int("attempts", attempts),
		logger.Duration("timeout", timeout),
		logger.Error(err))
}

func (cl *connectionLogger) logRetry(attempt int, remaining, next time.Duration, warnThreshold int, err error) {
	fields := []logger.Field{
		logger.String("addr", cl.backend.Addr),
		logger.Int("attempt", attempt),
		logger.Duration("next_retry_in", next),
		logger.Error(err),
	}
	switch {
	case remaining < 10*time.Second:
		cl.logger.Error(cl.backend.Name+" still down, timeout approaching",
			append(fields, logger.Duration("remaining", remaining))...)
	case attempt <= warnThreshold:
		cl.logger.Warn(cl.backend.Name+" connection failed, retrying", fields...)
	default:
		cl.logger.Error(cl.backend.Name+" still unavailable", fields...)
	}
}

func timeLeft(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}
