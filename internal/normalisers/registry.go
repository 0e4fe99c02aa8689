package normalisers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
	"github.com/custodia-labs/salasync/internal/logger"
	"github.com/custodia-labs/salasync/internal/normalisers/docx"
	"github.com/custodia-labs/salasync/internal/normalisers/office"
	"github.com/custodia-labs/salasync/internal/normalisers/rtf"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry maps MIME types to normalisers ordered by priority.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byMIME: make(map[string][]driven.Normaliser),
	}
}

// Default returns a registry with the DOCX, ODT and RTF normalisers registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(docx.New())
	r.Register(office.New())
	r.Register(rtf.New())
	return r
}

// Register adds a normaliser for each of its MIME types.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mimeType := range n.SupportedMIMETypes() {
		key := canonical(mimeType)
		list := append(r.byMIME[key], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[key] = list
	}
}

// Normalise converts content with the highest priority normaliser for
// mimeType, trying lower priorities when a conversion fails.
func (r *Registry) Normalise(ctx context.Context, mimeType string, content []byte) (string, error) {
	r.mu.RLock()
	candidates := r.byMIME[canonical(mimeType)]
	r.mu.RUnlock()

	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, mimeType)
	}

	var errs []error
	for _, n := range candidates {
		text, err := n.Normalise(ctx, content)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.Debug("normaliser (priority %d) failed for %s: %v", n.Priority(), mimeType, err)
		errs = append(errs, err)
	}
	return "", errors.Join(errs...)
}

// Supports reports whether some normaliser handles mimeType.
func (r *Registry) Supports(mimeType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byMIME[canonical(mimeType)]) > 0
}

// SupportedMIMETypes returns all registered MIME types in sorted order.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byMIME))
	for t := range r.byMIME {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// canonical drops MIME parameters and case.
func canonical(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
