package salesforce

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/Mykobyhub/kibana-connectors/pkg/connector/base"
	"github.com/Mykobyhub/kibana-connectors/pkg/errors"
	"github.com/Mykobyhub/kibana-connectors/pkg/json"
)

// TextExtractor converts attachment bytes to plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, filename string, data []byte) (string, error)
}

// HTTPExtractor calls a text extraction service that accepts the raw file
// with PUT /extract_text/ and answers {"extracted_text": "..."}.
type HTTPExtractor struct {
	endpoint   string
	httpClient *http.Client
	retry      *base.RetryPolicy
	logger     *zap.Logger
}

// NewHTTPExtractor creates an extractor for the service at serviceURL.
func NewHTTPExtractor(serviceURL string, httpClient *http.Client, retry *base.RetryPolicy, logger *zap.Logger) *HTTPExtractor {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if retry == nil {
		retry = base.DefaultRetryPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPExtractor{
		endpoint:   serviceURL + "/extract_text/",
		httpClient: httpClient,
		retry:      retry,
		logger:     logger.With(zap.String("component", "text_extractor")),
	}
}

type extractionResponse struct {
	ExtractedText string `json:"extracted_text"`
}

func (e *HTTPExtractor) ExtractText(ctx context.Context, filename string, data []byte) (string, error) {
	var text string
	err := e.retry.ExecuteWithCondition(ctx, func() error {
		target := e.endpoint
		if filename != "" {
			target += "?" + url.Values{"filename": {filename}}.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "failed to build extraction request")
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		req.Header.Set("Accept", "application/json")

		resp, err := e.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, errors.ErrorTypeConnection, "extraction service unreachable")
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return errors.Newf(errors.ErrorTypeServer, "extraction service returned %d", resp.StatusCode)
		case resp.StatusCode >= 300:
			return errors.Newf(errors.ErrorTypeData, "extraction service returned %d", resp.StatusCode)
		}

		var payload extractionResponse
		if err := json.DecodeReader(io.LimitReader(resp.Body, 64<<20), &payload); err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "failed to decode extraction response")
		}
		text = payload.ExtractedText
		return nil
	}, errors.IsRetryable)
	if err != nil {
		return "", err
	}

	e.logger.Debug("text extracted", zap.String("filename", filename), zap.Int("chars", len(text)))
	return text, nil
}
