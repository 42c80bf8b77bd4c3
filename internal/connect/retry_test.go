package connect

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookmarks-api/internal/logger"
)

func fastPolicy() Policy {
	return Policy{
		ConnectTimeout: 500 * time.Millisecond,
		RetryInterval:  5 * time.Millisecond,
		MaxWait:        20 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
		WarnThreshold:  2,
	}
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Policy)
	}{
		{name: "connect timeout", mutate: func(p *Policy) { p.ConnectTimeout = 0 }},
		{name: "retry interval", mutate: func(p *Policy) { p.RetryInterval = -1 }},
		{name: "max wait", mutate: func(p *Policy) { p.MaxWait = 0 }},
		{name: "ping timeout", mutate: func(p *Policy) { p.PingTimeout = 0 }},
		{name: "warn threshold", mutate: func(p *Policy) { p.WarnThreshold = -1 }},
	}

	require.NoError(t, fastPolicy().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fastPolicy()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	var calls atomic.Int32
	ping := func(context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	err := WithRetry(context.Background(), Backend{Name: "test", Addr: "mem"}, fastPolicy(), ping, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWithRetryGivesUp(t *testing.T) {
	boom := errors.New("connection refused")
	p := fastPolicy()
	p.ConnectTimeout = 60 * time.Millisecond

	err := WithRetry(context.Background(), Backend{Name: "test", Addr: "mem"}, p,
		func(context.Context) error { return boom }, logger.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "test unavailable at mem")
}

func TestWithRetryRejectsInvalidPolicy(t *testing.T) {
	err := WithRetry(context.Background(), Backend{Name: "test"}, Policy{},
		func(context.Context) error { return nil }, logger.NewNop())
	assert.Error(t, err)
}
