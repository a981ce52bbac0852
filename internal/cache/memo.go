package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"lbo-analyzer/internal/lbo"
	"lbo-analyzer/internal/model"
)

// Memo memoizes engine runs keyed by model.Inputs.Key.
// Concurrent callers with the same key share one computation. Store failures
// are logged and treated as misses; they never fail a run.
type Memo struct {
	engine *lbo.Engine
	store  Store // nil disables persistence; singleflight still applies
	ttl    time.Duration
	logger *slog.Logger

	group singleflight.Group
}

func NewMemo(engine *lbo.Engine, store Store, ttl time.Duration, logger *slog.Logger) *Memo {
	if engine == nil {
		engine = lbo.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Memo{engine: engine, store: store, ttl: ttl, logger: logger}
}

func (m *Memo) Engine() *lbo.Engine { return m.engine }

// Run returns the result for in, computing it at most once per key while cached.
// hit reports whether the result came from the store. The returned Result is
// the caller's own copy.
func (m *Memo) Run(ctx context.Context, in model.Inputs) (res *lbo.Result, hit bool, err error) {
	key := in.Key()

	if cached, ok := m.load(ctx, key); ok {
		return cached, true, nil
	}

	ch := m.group.DoChan(key, func() (interface{}, error) {
		r, err := m.engine.Run(in)
		if err != nil {
			return nil, err
		}
		m.save(context.WithoutCancel(ctx), key, r)
		return r, nil
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case out := <-ch:
		if out.Err != nil {
			return nil, false, out.Err
		}
		return out.Val.(*lbo.Result).Clone(), false, nil
	}
}

// Lookup fetches a previously computed result by its key.
func (m *Memo) Lookup(ctx context.Context, key string) (*lbo.Result, bool) {
	return m.load(ctx, key)
}

func (m *Memo) load(ctx context.Context, key string) (*lbo.Result, bool) {
	if m.store == nil {
		return nil, false
	}
	raw, found, err := m.store.Get(ctx, key)
	if err != nil {
		m.logger.Warn("result cache read failed", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	var res lbo.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		m.logger.Warn("result cache entry corrupt", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	return &res, true
}

func (m *Memo) save(ctx context.Context, key string, res *lbo.Result) {
	if m.store == nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		m.logger.Warn("result not cacheable", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := m.store.Set(ctx, key, raw, m.ttl); err != nil {
		m.logger.Warn("result cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}
