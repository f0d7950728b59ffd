package json

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Mykobyhub/kibana-connectors/pkg/compression"
	"github.com/Mykobyhub/kibana-connectors/pkg/config"
	"github.com/Mykobyhub/kibana-connectors/pkg/connector/core"
	"github.com/Mykobyhub/kibana-connectors/pkg/errors"
	jsonutil "github.com/Mykobyhub/kibana-connectors/pkg/json"
	"github.com/Mykobyhub/kibana-connectors/pkg/logger"
)

// DestinationName is the registry name of the JSON destination.
const DestinationName = "json"

// Format represents the JSON file format
type Format string

const (
	// Array represents a file containing a JSON array of documents
	Array Format = "array"
	// Lines represents line-delimited JSON (JSONL/NDJSON)
	Lines Format = "lines"
)

const (
	defaultBufferSize = 64 * 1024
	// stdoutPath writes to standard output instead of a file
	stdoutPath = "-"
)

// Destination writes documents to a JSON file, optionally compressed.
type Destination struct {
	path      string
	format    Format
	pretty    bool
	indent    string
	algorithm compression.Algorithm
	level     compression.Level

	mu         sync.Mutex
	file       io.WriteCloser
	compressed io.WriteCloser
	writer     *bufio.Writer
	encoder    *gojson.Encoder
	written    int
	logger     *zap.Logger
}

// NewDestination allocates a JSON destination. Initialize opens the output.
func NewDestination(cfg *config.BaseConfig) (core.Destination, error) {
	return &Destination{}, nil
}

type stdout struct {
	io.Writer
}

func (stdout) Close() error { return nil }

// Initialize opens the output file.
func (d *Destination) Initialize(ctx context.Context, cfg *config.BaseConfig) error {
	creds := &cfg.Security

	d.path = creds.String("path", "")
	if d.path == "" {
		return errors.New(errors.ErrorTypeValidation, "path is required").WithDetail("field", "path")
	}

	d.format = Format(creds.String("format", string(Lines)))
	if d.format != Lines && d.format != Array {
		return errors.Newf(errors.ErrorTypeValidation, "unsupported format %q", d.format).WithDetail("field", "format")
	}

	pretty, err := creds.Bool("pretty", false)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid setting")
	}
	d.pretty = pretty
	d.indent = creds.String("indent", "  ")

	algo, err := compression.ParseAlgorithm(cfg.Advanced.CompressionAlgorithm)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid compression setting")
	}
	d.algorithm = algo
	d.level = compression.LevelFromInt(cfg.Advanced.CompressionLevel)

	if d.logger == nil {
		d.logger = logger.Get().With(zap.String("connector", cfg.Name), zap.String("destination", DestinationName))
	}
	return d.open()
}

func (d *Destination) open() error {
	if d.path == stdoutPath {
		d.file = stdout{os.Stdout}
	} else {
		if ext := compression.Extension(d.algorithm); ext != "" && !strings.HasSuffix(d.path, ext) {
			d.path += ext
		}
		if dir := filepath.Dir(d.path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.Wrap(err, errors.ErrorTypeConfig, "failed to create output directory")
			}
		}
		file, err := os.Create(d.path)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "failed to create output file")
		}
		d.file = file
	}

	compressed, err := compression.NewWriter(d.file, d.algorithm, d.level)
	if err != nil {
		_ = d.file.Close()
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to create compression writer")
	}
	d.compressed = compressed
	d.writer = bufio.NewWriterSize(compressed, defaultBufferSize)
	d.encoder = jsonutil.NewEncoder(d.writer)
	if d.pretty {
		d.encoder.SetIndent("", d.indent)
	}

	d.logger.Info("json destination opened",
		zap.String("path", d.path),
		zap.String("format", string(d.format)),
		zap.String("compression", string(d.algorithm)))
	return nil
}

// Path returns the output path, including any compression suffix.
func (d *Destination) Path() string {
	return d.path
}

// Write encodes every document of stream and returns how many were written.
func (d *Destination) Write(ctx context.Context, stream *core.DocumentStream) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.encoder == nil {
		return 0, errors.New(errors.ErrorTypeConfig, "destination is not initialized")
	}

	count := 0
	for {
		select {
		case doc, ok := <-stream.Documents:
			if !ok {
				for err := range stream.Errors {
					if err != nil {
						return count, err
					}
				}
				return count, d.writer.Flush()
			}
			if err := d.writeDocument(doc); err != nil {
				return count, err
			}
			count++

		case <-ctx.Done():
			_ = d.writer.Flush()
			return count, ctx.Err()
		}
	}
}

func (d *Destination) writeDocument(doc core.Document) error {
	if d.format == Array {
		sep := ","
		if d.written == 0 {
			sep = "["
		}
		if _, err := d.writer.WriteString(sep); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConnection, "failed to write output")
		}
	}
	if err := d.encoder.Encode(doc); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to encode document").WithDetail("_id", doc.ID())
	}
	d.written++
	return nil
}

// Close terminates the array when needed, flushes the codec and closes the file.
func (d *Destination) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.file == nil {
		return nil
	}

	var errs []error
	if d.format == Array {
		closing := "]\n"
		if d.written == 0 {
			closing = "[]\n"
		}
		if _, err := d.writer.WriteString(closing); err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.writer.Flush(); err != nil {
		errs = append(errs, err)
	}
	if err := d.compressed.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := d.file.Close(); err != nil {
		errs = append(errs, err)
	}
	d.file = nil

	d.logger.Info("json destination closed", zap.String("path", d.path), zap.Int("documents", d.written))
	if err := errors.Join(errs...); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to close output")
	}
	return nil
}
