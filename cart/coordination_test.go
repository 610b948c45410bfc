package cart_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-token-gateway/cart"
	"github.com/jrsteele09/go-token-gateway/coordinator"
	"github.com/jrsteele09/go-token-gateway/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockingIssuer(t *testing.T, local *coordinator.Local) (*cart.Issuer, *atomic.Int32, chan struct{}) {
	t.Helper()
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		<-release
		if n == 1 {
			_, _ = w.Write([]byte(`{"data":{"token":"CT1"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"token":"CT-other"}}`))
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig{baseURL: srv.URL}
	return cart.NewIssuer(upstream.NewClient(cfg), local, cfg), &calls, release
}

func TestConcurrentCartRequestsForOneCartShareACall(t *testing.T) {
	local := coordinator.NewLocal()
	issuer, calls, release := blockingIssuer(t, local)

	const tabs = 5
	results := make([]*cart.IssueResult, tabs)
	var wg sync.WaitGroup
	for i := 0; i < tabs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = issuer.EnsureCartToken(context.Background(), "CT1", "")
		}(i)
	}

	require.Eventually(t, func() bool { return local.InFlight() == tabs }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.True(t, r.OK)
		assert.Equal(t, "CT1", r.Identity.Token)
		assert.True(t, r.Reused)
	}
}

func TestAnonymousFirstRequestsAreNotCoordinated(t *testing.T) {
	local := coordinator.NewLocal()
	issuer, calls, release := blockingIssuer(t, local)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := issuer.EnsureCartToken(context.Background(), "", "")
			assert.True(t, r.OK)
			assert.False(t, r.Shared)
		}()
	}

	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()
}
