// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/unified-search/internal/provider"
	"github.com/pdiddy/unified-search/pkg/types"
)

var errThrottled = errors.New("rate limit wait exceeds deadline")

// outcome is the terminal state of one provider task.
type outcome struct {
	results []types.SearchResult
	err     error
	elapsed time.Duration
}

// dispatch runs one task per descriptor and waits for all of them. Each
// task is bounded by its own provider timeout; outcomes are indexed like
// descs so completion order does not matter.
func (e *Engine) dispatch(ctx context.Context, log *zap.Logger, descs []provider.Descriptor, query string, maxResults int) []outcome {
	outcomes := make([]outcome, len(descs))

	var g errgroup.Group
	for i, d := range descs {
		g.Go(func() error {
			start := time.Now()
			results, err := call(ctx, d, d.Timeout, func(ctx context.Context) ([]types.SearchResult, error) {
				s, ok := d.Provider.(provider.Searcher)
				if !ok {
					return nil, fmt.Errorf("%w: %s cannot search", provider.ErrUnsupported, d.Name)
				}
				return s.Search(ctx, query, maxResults)
			})
			outcomes[i] = outcome{results: results, err: err, elapsed: time.Since(start)}
			e.observe(log, d, outcomes[i])
			return nil
		})
	}
	g.Wait()
	return outcomes
}

func (e *Engine) observe(log *zap.Logger, d provider.Descriptor, o outcome) {
	status := "success"
	switch {
	case errors.Is(o.err, provider.ErrTimeout):
		status = "timeout"
	case o.err != nil:
		status = "error"
	}
	e.metrics.ObserveProvider(string(d.Category), d.Name, status, o.elapsed)

	fields := []zap.Field{
		zap.String("provider", d.Name),
		zap.Duration("duration", o.elapsed),
	}
	if o.err != nil {
		log.Warn("provider failed", append(fields, zap.String("status", status), zap.Error(o.err))...)
		return
	}
	log.Debug("provider succeeded", append(fields, zap.Int("results", len(o.results)))...)
}

// call runs fn against one provider under its own timeout. The limiter is
// waited on inside that timeout. A provider that ignores cancellation is
// abandoned: its goroutine finishes on its own and the late reply is
// dropped. Errors come back classified as timeout or provider failures;
// a deadline set by the provider itself also counts as a timeout.
func call[T any](ctx context.Context, d provider.Descriptor, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type reply struct {
		v   T
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		if err := d.Wait(ctx); err != nil {
			ch <- reply{err: fmt.Errorf("%w: %v", errThrottled, err)}
			return
		}
		v, err := fn(ctx)
		ch <- reply{v: v, err: err}
	}()

	var r reply
	select {
	case r = <-ch:
	case <-ctx.Done():
		select {
		case r = <-ch:
		default:
			r.err = ctx.Err()
		}
	}

	switch {
	case r.err == nil:
		return r.v, nil
	case errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.Is(r.err, context.DeadlineExceeded),
		errors.Is(r.err, errThrottled):
		return zero, provider.Timeout(d.Name, r.err)
	default:
		return zero, provider.Failure(d.Name, r.err)
	}
}
