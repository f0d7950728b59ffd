package salesforce

import (
	"bytes"
	"context"
	stderrors "errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/Mykobyhub/kibana-connectors/pkg/clients"
	"github.com/Mykobyhub/kibana-connectors/pkg/connector/base"
	"github.com/Mykobyhub/kibana-connectors/pkg/errors"
	"github.com/Mykobyhub/kibana-connectors/pkg/metrics"
)

const tokenPath = "/services/oauth2/token"

// newTokenManager builds the client-credentials token manager for an org.
func newTokenManager(cfg *Config, httpClient *http.Client, retry *base.RetryPolicy, collector *metrics.Collector, logger *zap.Logger) *clients.TokenManager {
	tm := clients.NewTokenManager(clients.ClientCredentialsConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.InstanceURL() + tokenPath,
	}, httpClient, retry, classifyTokenError, logger)
	if collector != nil {
		tm.OnFetch = collector.TokenFetch
	}
	return tm
}

// classifyTokenError separates rejected credentials, which are final, from
// transient token endpoint failures.
func classifyTokenError(err error) (error, bool) {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err, false
	}

	var retrieveErr *oauth2.RetrieveError
	if stderrors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		if status == http.StatusBadRequest &&
			(retrieveErr.ErrorCode == codeInvalidClient || bytes.Contains(retrieveErr.Body, []byte(codeInvalidClient))) {
			apiErr := &APIError{
				StatusCode: status,
				Codes:      []string{codeInvalidClient},
				Messages:   nonEmpty(retrieveErr.ErrorDescription),
				Kind:       ErrInvalidCredentials,
			}
			return errors.Wrap(apiErr, errors.ErrorTypeAuthentication, "token request rejected"), false
		}
		apiErr := &APIError{StatusCode: status, Messages: nonEmpty(retrieveErr.ErrorDescription), Kind: ErrTokenFetch}
		return errors.Wrap(apiErr, errors.ErrorTypeAuthentication, "failed to fetch token"), true
	}

	apiErr := &APIError{Messages: []string{err.Error()}, Kind: ErrTokenFetch}
	return errors.Wrap(apiErr, errors.ErrorTypeAuthentication, "failed to fetch token"), true
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
