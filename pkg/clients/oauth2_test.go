package clients

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Mykobyhub/kibana-connectors/pkg/connector/base"
	"github.com/Mykobyhub/kibana-connectors/pkg/testutil"
)

var errBadClient = stderrors.New("bad client")

func testRetry() *base.RetryPolicy {
	return &base.RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
}

func classifyForTest(err error) (error, bool) {
	var rerr *oauth2.RetrieveError
	if stderrors.As(err, &rerr) && rerr.ErrorCode == "invalid_client" {
		return errBadClient, false
	}
	return err, true
}

func newTokenServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestTokenManager(t *testing.T) {
	t.Run("fetches once and caches", func(t *testing.T) {
		var calls int32
		srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
			assert.Equal(t, "1234", r.PostForm.Get("client_id"))
			assert.Equal(t, "9876", r.PostForm.Get("client_secret"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"foo","token_type":"Bearer"}`))
		})

		tm := NewTokenManager(ClientCredentialsConfig{ClientID: "1234", ClientSecret: "9876", TokenURL: srv.URL},
			srv.Client(), testRetry(), classifyForTest, testutil.TestLogger(t))

		for i := 0; i < 3; i++ {
			token, err := tm.Token(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "foo", token)
		}
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		assert.False(t, tm.FetchedAt().IsZero())

		tm.Invalidate()
		_, err := tm.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("retries transient failures", func(t *testing.T) {
		var calls int32
		srv := newTokenServer(t, func(w http.ResponseWriter, _ *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"bar"}`))
		})

		var results []string
		tm := NewTokenManager(ClientCredentialsConfig{ClientID: "a", ClientSecret: "b", TokenURL: srv.URL},
			srv.Client(), testRetry(), classifyForTest, nil)
		tm.OnFetch = func(result string) { results = append(results, result) }

		token, err := tm.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "bar", token)
		assert.Equal(t, []string{"error", "ok"}, results)
	})

	t.Run("does not retry rejected credentials", func(t *testing.T) {
		var calls int32
		srv := newTokenServer(t, func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"Invalid client credentials"}`))
		})

		tm := NewTokenManager(ClientCredentialsConfig{ClientID: "a", ClientSecret: "b", TokenURL: srv.URL},
			srv.Client(), testRetry(), classifyForTest, nil)

		_, err := tm.Token(context.Background())
		assert.ErrorIs(t, err, errBadClient)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("stale invalidation keeps a fresh token", func(t *testing.T) {
		var calls int32
		srv := newTokenServer(t, func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"fresh"}`))
		})

		tm := NewTokenManager(ClientCredentialsConfig{TokenURL: srv.URL}, srv.Client(), testRetry(), nil, nil)
		_, err := tm.Token(context.Background())
		require.NoError(t, err)

		tm.InvalidateIfCurrent("old")
		token, err := tm.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "fresh", token)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}

func TestRateLimitedTransport(t *testing.T) {
	srv := newTokenServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	client := &http.Client{Transport: NewRateLimitedTransport(http.DefaultTransport, 1, 1)}

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	_, err = client.Do(req)
	assert.Error(t, err, "second request within the same second must wait past the deadline")
}

func TestHTTPConfigFromBase(t *testing.T) {
	hc := HTTPConfigFromBase(nil)
	assert.True(t, hc.EnableHTTP2)
	assert.Zero(t, hc.RateLimit)

	client := NewHTTPClient(hc, nil)
	assert.Equal(t, hc.RequestTimeout, client.Timeout)
}
