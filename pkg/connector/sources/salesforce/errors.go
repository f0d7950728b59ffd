package salesforce

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Mykobyhub/kibana-connectors/pkg/errors"
	"github.com/Mykobyhub/kibana-connectors/pkg/json"
)

// Error classes. Test for them with errors.Is.
var (
	ErrInvalidCredentials = stderrors.New("invalid client credentials")
	ErrTokenFetch         = stderrors.New("token fetch failed")
	ErrRateLimited        = stderrors.New("request limit exceeded")
	ErrInvalidQuery       = stderrors.New("invalid query")
	ErrConnectorRequest   = stderrors.New("connector request failed")
	ErrServerError        = stderrors.New("salesforce server error")
)

// Salesforce error codes that drive classification.
const (
	codeInvalidSession = "INVALID_SESSION_ID"
	codeRequestLimit   = "REQUEST_LIMIT_EXCEEDED"
	codeInvalidField   = "INVALID_FIELD"
	codeInvalidTerm    = "INVALID_TERM"
	codeMalformedQuery = "MALFORMED_QUERY"
	codeInvalidClient  = "invalid_client"
)

// APIError describes a failed Salesforce call. Kind is one of the Err*
// classes above.
type APIError struct {
	StatusCode int
	Codes      []string
	Messages   []string
	Kind       error
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if len(e.Codes) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(e.Codes, ","))
	}
	if len(e.Messages) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Messages, "; "))
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// HasCode reports whether the response carried the given error code.
func (e *APIError) HasCode(code string) bool {
	for _, c := range e.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// errorItem is one entry of the error list the REST API returns.
type errorItem struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}

// parseAPIError decodes an error body. Bodies that are not the documented
// list are kept as a single message.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var items []errorItem
	if err := json.Unmarshal(body, &items); err == nil {
		for _, item := range items {
			if item.ErrorCode != "" {
				apiErr.Codes = append(apiErr.Codes, item.ErrorCode)
			}
			if item.Message != "" {
				apiErr.Messages = append(apiErr.Messages, item.Message)
			}
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		apiErr.Messages = []string{text}
	}
	if len(apiErr.Messages) == 0 {
		apiErr.Messages = []string{http.StatusText(status)}
	}
	return apiErr
}

// isSessionExpired reports whether the response asks for a new token.
func isSessionExpired(apiErr *APIError) bool {
	return apiErr.StatusCode == http.StatusUnauthorized && apiErr.HasCode(codeInvalidSession)
}

// classify assigns a class to a non-2xx response and wraps it in the
// structured error type. Retryable results carry a retryable error type.
func classify(apiErr *APIError) *errors.Error {
	switch {
	case apiErr.StatusCode == http.StatusForbidden && apiErr.HasCode(codeRequestLimit):
		apiErr.Kind = ErrRateLimited
		return errors.Wrap(apiErr, errors.ErrorTypeRateLimit, "salesforce request rejected")
	case apiErr.StatusCode == http.StatusBadRequest &&
		(apiErr.HasCode(codeInvalidField) || apiErr.HasCode(codeInvalidTerm) || apiErr.HasCode(codeMalformedQuery)):
		apiErr.Kind = ErrInvalidQuery
		return errors.Wrap(apiErr, errors.ErrorTypeQuery, "salesforce rejected the query")
	case apiErr.StatusCode >= 500:
		apiErr.Kind = ErrServerError
		return errors.Wrap(apiErr, errors.ErrorTypeServer, "salesforce request failed")
	default:
		apiErr.Kind = ErrConnectorRequest
		return errors.Wrap(apiErr, errors.ErrorTypeConnection, "salesforce request failed")
	}
}

// transportError wraps a connection-level failure as a retryable request
// error. Context errors are returned unchanged so they are never retried.
func transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	apiErr := &APIError{Kind: ErrConnectorRequest, Messages: []string{err.Error()}}
	return errors.Wrap(apiErr, errors.ErrorTypeConnection, "salesforce request failed")
}
