package clients

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/Mykobyhub/kibana-connectors/pkg/connector/base"
	"github.com/Mykobyhub/kibana-connectors/pkg/errors"
)

// TokenErrorClassifier maps a raw token endpoint failure to the error returned
// to callers and reports whether another attempt may succeed.
type TokenErrorClassifier func(err error) (classified error, retryable bool)

// ClientCredentialsConfig configures a TokenManager.
type ClientCredentialsConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// TokenManager fetches an OAuth2 client-credentials token and caches it in
// memory until Invalidate is called. Concurrent callers share one fetch.
type TokenManager struct {
	config     *clientcredentials.Config
	httpClient *http.Client
	retry      *base.RetryPolicy
	classify   TokenErrorClassifier
	logger     *zap.Logger

	// OnFetch, when set, is called with "ok" or "error" after each token request
	OnFetch func(result string)

	mu        sync.Mutex
	token     string
	fetchedAt time.Time
}

// NewTokenManager creates a token manager. A nil classifier treats every
// failure as retryable.
func NewTokenManager(cfg ClientCredentialsConfig, httpClient *http.Client, retry *base.RetryPolicy, classify TokenErrorClassifier, logger *zap.Logger) *TokenManager {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if retry == nil {
		retry = base.DefaultRetryPolicy()
	}
	if classify == nil {
		classify = func(err error) (error, bool) {
			return errors.Wrap(err, errors.ErrorTypeAuthentication, "token request failed"), true
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TokenManager{
		config: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
		retry:      retry,
		classify:   classify,
		logger:     logger.With(zap.String("component", "token_manager")),
	}
}

// Token returns the cached access token, fetching one if none is cached.
func (tm *TokenManager) Token(ctx context.Context) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.token != "" {
		return tm.token, nil
	}

	var fetched string
	err := tm.retry.ExecuteWithCondition(ctx, func() error {
		token, err := tm.fetch(ctx)
		if err != nil {
			return err
		}
		fetched = token
		return nil
	}, func(err error) bool {
		_, retryable := tm.classify(err)
		return retryable
	})
	if err != nil {
		classified, _ := tm.classify(err)
		return "", classified
	}

	tm.token = fetched
	tm.fetchedAt = time.Now()
	tm.logger.Debug("access token fetched")
	return fetched, nil
}

// Invalidate discards the cached token.
func (tm *TokenManager) Invalidate() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.token = ""
}

// InvalidateIfCurrent discards the cached token only if it still equals
// stale, so a token refreshed by another caller survives.
func (tm *TokenManager) InvalidateIfCurrent(stale string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.token == stale {
		tm.token = ""
	}
}

// FetchedAt returns when the cached token was obtained.
func (tm *TokenManager) FetchedAt() time.Time {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.fetchedAt
}

func (tm *TokenManager) fetch(ctx context.Context) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, tm.httpClient)

	token, err := tm.config.Token(ctx)
	if err != nil {
		tm.report("error")
		tm.logger.Debug("token request failed", zap.Error(err))
		return "", err
	}
	tm.report("ok")
	return token.AccessToken, nil
}

func (tm *TokenManager) report(result string) {
	if tm.OnFetch != nil {
		tm.OnFetch(result)
	}
}
