package salesforce

import (
	"context"
	"encoding/base64"

	"go.uber.org/zap"

	"github.com/Mykobyhub/kibana-connectors/pkg/connector/core"
	"github.com/Mykobyhub/kibana-connectors/pkg/metrics"
)

// Attachment download results, used as metric labels.
const (
	downloadOK        = "ok"
	downloadNotFound  = "not_found"
	downloadTooLarge  = "too_large"
	downloadExtracted = "extracted"
	downloadError     = "error"
)

// attachmentFetcher resolves the content of a content document: extracted
// text in body when an extractor is configured, base64 bytes in _attachment
// otherwise.
type attachmentFetcher struct {
	client    *Client
	extractor TextExtractor
	maxSize   int64
	metrics   *metrics.Collector
	logger    *zap.Logger
}

// attach downloads the latest version of cd and stores its content on doc.
// A missing version, a 404 or an oversized file leaves doc without content.
func (f *attachmentFetcher) attach(ctx context.Context, doc core.Document, cd *ContentDocument) error {
	version := cd.LatestPublishedVersion
	if version == nil || version.ID.Value == "" {
		return nil
	}
	logger := f.logger.With(zap.String("content_document_id", cd.ID.Value))

	if f.maxSize > 0 && cd.ContentSize > f.maxSize {
		logger.Warn("attachment exceeds size limit, skipping content",
			zap.Int64("size", cd.ContentSize),
			zap.Int64("max_size", f.maxSize))
		f.report(downloadTooLarge)
		return nil
	}

	data, found, err := f.client.download(ctx, version.ID.Value)
	if err != nil {
		f.report(downloadError)
		return err
	}
	if !found {
		logger.Debug("attachment content not found")
		f.report(downloadNotFound)
		return nil
	}

	if f.extractor == nil {
		doc["_attachment"] = base64.StdEncoding.EncodeToString(data)
		f.report(downloadOK)
		return nil
	}

	text, err := f.extractor.ExtractText(ctx, contentFilename(cd), data)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("text extraction failed, emitting without body", zap.Error(err))
		f.report(downloadError)
		return nil
	}
	doc["body"] = text
	f.report(downloadExtracted)
	return nil
}

func (f *attachmentFetcher) report(result string) {
	if f.metrics != nil {
		f.metrics.AttachmentDownload(result)
	}
}

func contentFilename(cd *ContentDocument) string {
	if title, ok := contentTitle(cd).(string); ok {
		return title
	}
	return cd.ID.Value
}
