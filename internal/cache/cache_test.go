package cache

import (
	"context"
	"testing"
	"time"
)

func TestNoopAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	c := NewNoop()

	c.Set(ctx, "key", []byte("value"), time.Hour)
	if v, ok := c.Get(ctx, "key"); ok {
		t.Fatalf("Get returned %q after Set on the no-op cache", v)
	}

	// Must not panic with nothing behind them.
	c.Delete(ctx, "key")
	c.Clear(ctx)
}

func TestNoopSatisfiesCache(t *testing.T) {
	var _ Cache = NewNoop()
	var _ Cache = (*Redis)(nil)
}
