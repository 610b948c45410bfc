package coordinator

import (
	"context"
	"sync/atomic"

	"github.com/jrsteele09/go-token-gateway/upstream"
	"golang.org/x/sync/singleflight"
)

// Local coordinates callers within one gateway process.
type Local struct {
	group    singleflight.Group
	inFlight atomic.Int64
}

var _ Coordinator = (*Local)(nil)

func NewLocal() *Local {
	return &Local{}
}

// Do makes the first caller for key the leader; later callers wait for its result.
// The key is forgotten as soon as the call resolves, so the next call starts fresh.
// An empty key disables coordination.
func (l *Local) Do(ctx context.Context, key string, fn Func) (*upstream.Response, bool, error) {
	if key == "" {
		resp, err := fn(ctx)
		return resp, false, err
	}

	l.inFlight.Add(1)
	defer l.inFlight.Add(-1)

	v, err, shared := l.group.Do(key, func() (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		return nil, shared, err
	}
	resp, _ := v.(*upstream.Response)
	return resp, shared, nil
}

// InFlight is the number of callers currently inside Do for any key.
func (l *Local) InFlight() int64 {
	return l.inFlight.Load()
}
