package drive

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/salasync/internal/connectors/google"
	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
	"github.com/custodia-labs/salasync/internal/logger"
)

// Ensure Traverser implements the interface.
var _ driven.FolderTraverser = (*Traverser)(nil)

const listFields = "nextPageToken, files(id, name, mimeType, webViewLink)"

// Traverser lists folder children over the Drive v3 API.
type Traverser struct {
	svc     *drive.Service
	limiter *google.RateLimiter
	cfg     Config
}

// NewTraverser creates a Traverser. A nil limiter uses google.DefaultRateLimit.
func NewTraverser(svc *drive.Service, limiter *google.RateLimiter, cfg Config) *Traverser {
	if limiter == nil {
		limiter = google.NewRateLimiter(google.DefaultRateLimit)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}
	return &Traverser{svc: svc, limiter: limiter, cfg: cfg}
}

// ListChildren returns the non-trashed children of parentID across all pages.
// Folders are reported as buckets and files as leaves; callers re-tag levels.
func (t *Traverser) ListChildren(ctx context.Context, parentID string, opts domain.ListOptions) ([]domain.FolderNode, error) {
	if strings.TrimSpace(parentID) == "" {
		return nil, fmt.Errorf("%w: empty folder id", domain.ErrInvalidInput)
	}

	q := ChildrenQuery(parentID, opts.OnlyFolders)
	logger.Debug("drive: list %s (folders only: %t)", parentID, opts.OnlyFolders)

	var (
		nodes     []domain.FolderNode
		pageToken string
	)
	for {
		call := t.svc.Files.List().
			Q(q).
			Fields(listFields).
			PageSize(t.cfg.PageSize).
			SupportsAllDrives(t.cfg.SharedDrives).
			IncludeItemsFromAllDrives(t.cfg.SharedDrives).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		var page *drive.FileList
		err := t.limiter.Do(ctx, func() error {
			var err error
			page, err = call.Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("%w: list %s: %w", domain.ErrTraversal, parentID, err)
		}

		for _, f := range page.Files {
			nodes = append(nodes, toNode(f, parentID))
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return nodes, nil
}

// ChildrenQuery builds the Drive search query for a folder's children.
func ChildrenQuery(parentID string, onlyFolders bool) string {
	q := fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(parentID))
	if onlyFolders {
		q += fmt.Sprintf(" and mimeType = '%s'", MimeTypeFolder)
	}
	return q
}

// escapeQuery escapes a value for a single-quoted Drive query literal.
func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

func toNode(f *drive.File, parentID string) domain.FolderNode {
	format := Classify(f.MimeType)
	kind := domain.NodeLeaf
	if format == domain.FormatFolder {
		kind = domain.NodeBucket
	}
	return domain.FolderNode{
		ID:       f.Id,
		Name:     f.Name,
		ParentID: parentID,
		Kind:     kind,
		MIMEType: f.MimeType,
		Format:   format,
		WebLink:  ResolveWebURL(f.Id, f.WebViewLink),
	}
}
