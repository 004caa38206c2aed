package store

import (
	"context"

	"github.com/matzehuels/procsheet/pkg/cache"
	"github.com/matzehuels/procsheet/pkg/diagram"
)

// retrying retries transient failures of the wrapped store.
type retrying struct {
	inner Store
}

// WithRetry wraps s so that errors marked with cache.Retryable are retried
// with cache.RetryWithBackoff.
func WithRetry(s Store) Store {
	return retrying{inner: s}
}

func (r retrying) List(ctx context.Context, f Filter) (out []Summary, err error) {
	err = cache.RetryWithBackoff(ctx, func() error {
		out, err = r.inner.List(ctx, f)
		return err
	})
	return out, err
}

func (r retrying) Get(ctx context.Context, id string) (d *diagram.Diagram, err error) {
	err = cache.RetryWithBackoff(ctx, func() error {
		d, err = r.inner.Get(ctx, id)
		return err
	})
	return d, err
}

func (r retrying) Put(ctx context.Context, in *diagram.Diagram) (d *diagram.Diagram, err error) {
	err = cache.RetryWithBackoff(ctx, func() error {
		d, err = r.inner.Put(ctx, in)
		return err
	})
	return d, err
}

func (r retrying) Delete(ctx context.Context, id string) error {
	return cache.RetryWithBackoff(ctx, func() error {
		return r.inner.Delete(ctx, id)
	})
}

func (r retrying) Close(ctx context.Context) error {
	return r.inner.Close(ctx)
}
