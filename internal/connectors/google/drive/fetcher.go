package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/salasync/internal/connectors/google"
	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
	"github.com/custodia-labs/salasync/internal/normalisers"
)

// Ensure the fetchers implement their interfaces.
var (
	_ driven.DocumentFetcher = (*Fetcher)(nil)
	_ driven.FormatFetcher   = (*NativeExporter)(nil)
	_ driven.FormatFetcher   = (*OfficeDownloader)(nil)
)

// Fetcher dispatches to one FormatFetcher per document format.
// Formats with no registered fetcher yield empty text.
type Fetcher struct {
	byFormat map[domain.DocumentFormat]driven.FormatFetcher
}

// NewFetcher creates a Fetcher over the given format fetchers.
func NewFetcher(fetchers ...driven.FormatFetcher) *Fetcher {
	byFormat := make(map[domain.DocumentFormat]driven.FormatFetcher, len(fetchers))
	for _, f := range fetchers {
		byFormat[f.Format()] = f
	}
	return &Fetcher{byFormat: byFormat}
}

// NewDriveFetcher wires the native export and office download paths.
func NewDriveFetcher(svc *drive.Service, limiter *google.RateLimiter, registry driven.NormaliserRegistry, cfg Config) *Fetcher {
	return NewFetcher(
		NewNativeExporter(svc, limiter, cfg),
		NewOfficeDownloader(svc, limiter, registry, cfg),
	)
}

// FetchText returns the text of doc, or empty text for formats with no text path.
func (f *Fetcher) FetchText(ctx context.Context, doc domain.SourceDocument) (string, error) {
	fetcher, ok := f.byFormat[doc.Format]
	if !ok {
		return "", nil
	}
	return fetcher.Fetch(ctx, doc)
}

// NativeExporter exports Google Docs as plain text.
type NativeExporter struct {
	svc     *drive.Service
	limiter *google.RateLimiter
	cfg     Config
}

// NewNativeExporter creates a NativeExporter.
func NewNativeExporter(svc *drive.Service, limiter *google.RateLimiter, cfg Config) *NativeExporter {
	if limiter == nil {
		limiter = google.NewRateLimiter(google.DefaultRateLimit)
	}
	if cfg.MaxContentSize <= 0 {
		cfg.MaxContentSize = MaxExportSize
	}
	return &NativeExporter{svc: svc, limiter: limiter, cfg: cfg}
}

// Format returns domain.FormatNativeRichDoc.
func (e *NativeExporter) Format() domain.DocumentFormat {
	return domain.FormatNativeRichDoc
}

// Fetch exports the document as text/plain. Oversized exports are truncated.
func (e *NativeExporter) Fetch(ctx context.Context, doc domain.SourceDocument) (string, error) {
	var resp *http.Response
	err := e.limiter.Do(ctx, func() error {
		var err error
		resp, err = e.svc.Files.Export(doc.ID, ExportMimeText).Context(ctx).Download()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: export %s: %w", domain.ErrFetch, doc.Name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, e.cfg.MaxContentSize))
	if err != nil {
		return "", fmt.Errorf("%w: read export %s: %w", domain.ErrFetch, doc.Name, err)
	}

	return normalisers.CleanText(string(data)), nil
}

// OfficeDownloader downloads uploaded office files and converts them to text.
type OfficeDownloader struct {
	svc      *drive.Service
	limiter  *google.RateLimiter
	registry driven.NormaliserRegistry
	cfg      Config
}

// NewOfficeDownloader creates an OfficeDownloader.
func NewOfficeDownloader(
	svc *drive.Service, limiter *google.RateLimiter, registry driven.NormaliserRegistry, cfg Config,
) *OfficeDownloader {
	if limiter == nil {
		limiter = google.NewRateLimiter(google.DefaultRateLimit)
	}
	if registry == nil {
		registry = normalisers.Default()
	}
	if cfg.MaxContentSize <= 0 {
		cfg.MaxContentSize = MaxExportSize
	}
	return &OfficeDownloader{svc: svc, limiter: limiter, registry: registry, cfg: cfg}
}

// Format returns domain.FormatBinaryOfficeDoc.
func (d *OfficeDownloader) Format() domain.DocumentFormat {
	return domain.FormatBinaryOfficeDoc
}

// Fetch downloads the file body (alt=media) and runs it through the normaliser registry.
func (d *OfficeDownloader) Fetch(ctx context.Context, doc domain.SourceDocument) (string, error) {
	var resp *http.Response
	err := d.limiter.Do(ctx, func() error {
		var err error
		resp, err = d.svc.Files.Get(doc.ID).
			SupportsAllDrives(d.cfg.SharedDrives).
			Context(ctx).
			Download()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: download %s: %w", domain.ErrFetch, doc.Name, err)
	}
	defer resp.Body.Close()

	// Read one byte past the limit to detect oversized files
	data, err := io.ReadAll(io.LimitReader(resp.Body, d.cfg.MaxContentSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", domain.ErrFetch, doc.Name, err)
	}
	if int64(len(data)) > d.cfg.MaxContentSize {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrFetch, doc.Name, d.cfg.MaxContentSize)
	}

	text, err := d.registry.Normalise(ctx, doc.MIMEType, data)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", doc.Name, err)
	}
	return text, nil
}
