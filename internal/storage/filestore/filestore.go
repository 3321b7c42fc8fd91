// Package filestore persists the product catalog as a single JSON document.
//
// The document has the shape {"products": [...]}. Writes go to a temporary
// file in the same directory which is fsynced and then renamed over the
// target, so readers never observe a partially written catalog.
//
// A Store assumes it is the only writer of its file.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/giftcard-catalog/internal/domain"
)

const tracerName = "github.com/utafrali/giftcard-catalog/internal/storage/filestore"

// tempFilePattern names the scratch files written before the rename.
const tempFilePattern = ".products-*.tmp"

var (
	// ErrStorageRead is wrapped by every failure to read or decode the document.
	ErrStorageRead = errors.New("storage read failed")
	// ErrStorageWrite is wrapped by every failure to encode or write the document.
	ErrStorageWrite = errors.New("storage write failed")
)

// Config holds the store settings.
type Config struct {
	Path            string
	CreateIfMissing bool
	// SlowOpThreshold logs operations at or above this duration. Zero disables it.
	SlowOpThreshold time.Duration
}

type document struct {
	Products []domain.Product `json:"products"`
}

// Store reads and writes the catalog document.
type Store struct {
	path    string
	slowOp  time.Duration
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// New opens the document at cfg.Path. A missing file is created as an empty
// catalog when cfg.CreateIfMissing is set; otherwise it is a read error.
func New(ctx context.Context, cfg Config, logger *slog.Logger, metrics *Metrics) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrStorageRead)
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	s := &Store{
		path:    cfg.Path,
		slowOp:  cfg.SlowOpThreshold,
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
	}

	_, err := os.Stat(cfg.Path)
	switch {
	case err == nil:
		return s, nil
	case errors.Is(err, fs.ErrNotExist) && cfg.CreateIfMissing:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("%w: create directory: %v", ErrStorageWrite, err)
		}
		if err := s.Save(ctx, []domain.Product{}); err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "created empty catalog", slog.String("path", cfg.Path))
		return s, nil
	default:
		return nil, fmt.Errorf("%w: stat %s: %v", ErrStorageRead, cfg.Path, err)
	}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the whole catalog. An absent or null products key yields an
// empty slice.
func (s *Store) Load(ctx context.Context) (products []domain.Product, err error) {
	ctx, end := s.trace(ctx, "Load")
	defer func() { end(err) }()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageRead, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStorageRead, s.path, err)
	}
	if doc.Products == nil {
		doc.Products = []domain.Product{}
	}
	return doc.Products, nil
}

// Save replaces the document with products.
func (s *Store) Save(ctx context.Context, products []domain.Product) (err error) {
	ctx, end := s.trace(ctx, "Save")
	defer func() { end(err) }()

	if products == nil {
		products = []domain.Product{}
	}
	data, err := encode(document{Products: products})
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrStorageWrite, err)
	}
	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return nil
}

// Ping reports whether the document is reachable.
func (s *Store) Ping(ctx context.Context) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageRead, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrStorageRead, s.path)
	}
	return nil
}

func encode(doc document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// trace starts a client span for a store operation. The returned function
// ends the span, records the duration and logs slow operations.
func (s *Store) trace(ctx context.Context, operation string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "filestore."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("store.system", "file"),
			attribute.String("store.operation", operation),
			attribute.String("store.path", s.path),
		),
	)

	return ctx, func(err error) {
		elapsed := time.Since(start)
		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.metrics.observe(operation, status, elapsed)

		if s.slowOp > 0 && elapsed >= s.slowOp {
			attrs := []any{
				slog.String("operation", operation),
				slog.String("path", s.path),
				slog.Duration("duration", elapsed),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			s.logger.WarnContext(ctx, "slow store operation", attrs...)
		}
	}
}

// Metrics holds the store collectors.
type Metrics struct {
	duration *prometheus.HistogramVec
}

// NewMetrics registers the store collectors with reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_store_operation_duration_seconds",
				Help:    "Duration of catalog file store operations in seconds",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
	}
}

func (m *Metrics) observe(operation, status string, d time.Duration) {
	m.duration.WithLabelValues(operation, status).Observe(d.Seconds())
}
