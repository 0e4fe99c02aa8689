package drive

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/salasync/internal/connectors/google"
	"github.com/custodia-labs/salasync/internal/core/domain"
)

// fakeDrive serves the subset of the Drive v3 API used by the adapters.
type fakeDrive struct {
	mu       sync.Mutex
	children map[string][]*drive.File
	pageSize int
	exports  map[string]string
	media    map[string][]byte
	status   map[string]int
	queries  []string
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		children: make(map[string][]*drive.File),
		exports:  make(map[string]string),
		media:    make(map[string][]byte),
		status:   make(map[string]int),
	}
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	if code, ok := f.status[path]; ok {
		writeAPIError(w, code)
		return
	}

	switch {
	case path == "files":
		f.list(w, r)
	case strings.HasSuffix(path, "/export"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "files/"), "/export")
		if r.URL.Query().Get("mimeType") != ExportMimeText {
			writeAPIError(w, http.StatusBadRequest)
			return
		}
		body, ok := f.exports[id]
		if !ok {
			writeAPIError(w, http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	case strings.HasPrefix(path, "files/"):
		id := strings.TrimPrefix(path, "files/")
		if r.URL.Query().Get("alt") != "media" {
			writeAPIError(w, http.StatusBadRequest)
			return
		}
		body, ok := f.media[id]
		if !ok {
			writeAPIError(w, http.StatusNotFound)
			return
		}
		_, _ = w.Write(body)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeDrive) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	f.queries = append(f.queries, q)

	start := strings.Index(q, "'") + 1
	end := strings.Index(q, "' in parents")
	parent := strings.ReplaceAll(q[start:end], `\'`, `'`)

	var files []*drive.File
	for _, file := range f.children[parent] {
		if strings.Contains(q, "mimeType = '"+MimeTypeFolder+"'") && file.MimeType != MimeTypeFolder {
			continue
		}
		files = append(files, file)
	}

	offset := 0
	if tok := r.URL.Query().Get("pageToken"); tok != "" {
		offset = len(tok)
	}
	size := f.pageSize
	if size <= 0 {
		size = len(files)
	}
	resp := drive.FileList{}
	if offset < len(files) {
		endIdx := offset + size
		if endIdx < len(files) {
			resp.NextPageToken = strings.Repeat("x", endIdx)
		} else {
			endIdx = len(files)
		}
		resp.Files = files[offset:endIdx]
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func writeAPIError(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"code":%d,"message":%q}}`, code, http.StatusText(code))
}

func newTestService(t *testing.T, fake *fakeDrive) *drive.Service {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := google.NewDriveService(context.Background(), nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return svc
}

func testLimiter() *google.RateLimiter {
	return google.NewRateLimiter(google.RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 100})
}

func TestTraverser_ListChildren(t *testing.T) {
	fake := newFakeDrive()
	fake.children["master"] = []*drive.File{
		{Id: "r1", Name: "Sala 1", MimeType: MimeTypeFolder},
		{Id: "d1", Name: "notas.docx", MimeType: MimeTypeDOCX, WebViewLink: "https://docs/d1"},
		{Id: "g1", Name: "Informe", MimeType: MimeTypeGoogleDoc},
	}
	tr := NewTraverser(newTestService(t, fake), testLimiter(), DefaultConfig())

	nodes, err := tr.ListChildren(context.Background(), "master", domain.ListOptions{})

	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, domain.FolderNode{
		ID: "r1", Name: "Sala 1", ParentID: "master", Kind: domain.NodeBucket,
		MIMEType: MimeTypeFolder, Format: domain.FormatFolder,
		WebLink: "https://drive.google.com/file/d/r1/view",
	}, nodes[0])
	assert.Equal(t, domain.FormatBinaryOfficeDoc, nodes[1].Format)
	assert.Equal(t, domain.NodeLeaf, nodes[1].Kind)
	assert.Equal(t, "https://docs/d1", nodes[1].WebLink)
	assert.Equal(t, domain.FormatNativeRichDoc, nodes[2].Format)
	assert.Equal(t, []string{"'master' in parents and trashed = false"}, fake.queries)
}

func TestTraverser_OnlyFolders(t *testing.T) {
	fake := newFakeDrive()
	fake.children["room"] = []*drive.File{
		{Id: "b1", Name: "Inf Finales", MimeType: MimeTypeFolder},
		{Id: "d1", Name: "suelto.docx", MimeType: MimeTypeDOCX},
	}
	tr := NewTraverser(newTestService(t, fake), testLimiter(), DefaultConfig())

	nodes, err := tr.ListChildren(context.Background(), "room", domain.ListOptions{OnlyFolders: true})

	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "b1", nodes[0].ID)
}

func TestTraverser_Pagination(t *testing.T) {
	fake := newFakeDrive()
	fake.pageSize = 2
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		fake.children["big"] = append(fake.children["big"], &drive.File{Id: id, Name: id, MimeType: MimeTypeGoogleDoc})
	}
	tr := NewTraverser(newTestService(t, fake), testLimiter(), DefaultConfig())

	nodes, err := tr.ListChildren(context.Background(), "big", domain.ListOptions{})

	require.NoError(t, err)
	var ids []string
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)
	assert.Len(t, fake.queries, 3)
}

func TestTraverser_Errors(t *testing.T) {
	fake := newFakeDrive()
	fake.status["files"] = http.StatusUnauthorized
	tr := NewTraverser(newTestService(t, fake), testLimiter(), DefaultConfig())

	_, err := tr.ListChildren(context.Background(), "master", domain.ListOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTraversal)
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	_, err = tr.ListChildren(context.Background(), "  ", domain.ListOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChildrenQuery_Escapes(t *testing.T) {
	assert.Equal(t,
		`'it\'s\\odd' in parents and trashed = false and mimeType = 'application/vnd.google-apps.folder'`,
		ChildrenQuery(`it's\odd`, true))
}

func TestFetcher_NativeExport(t *testing.T) {
	fake := newFakeDrive()
	fake.exports["g1"] = "\ufeffPaciente: Juan Perez\r\nDNI: 30.111.222\r\n"
	svc := newTestService(t, fake)
	f := NewDriveFetcher(svc, testLimiter(), nil, DefaultConfig())

	text, err := f.FetchText(context.Background(), domain.SourceDocument{
		ID: "g1", Name: "Informe", MIMEType: MimeTypeGoogleDoc, Format: domain.FormatNativeRichDoc,
	})

	require.NoError(t, err)
	assert.Equal(t, "Paciente: Juan Perez\nDNI: 30.111.222\n", text)
}

func TestFetcher_NativeExportTruncates(t *testing.T) {
	fake := newFakeDrive()
	fake.exports["g1"] = "0123456789"
	cfg := DefaultConfig()
	cfg.MaxContentSize = 4
	f := NewFetcher(NewNativeExporter(newTestService(t, fake), testLimiter(), cfg))

	text, err := f.FetchText(context.Background(), domain.SourceDocument{ID: "g1", Format: domain.FormatNativeRichDoc})

	require.NoError(t, err)
	assert.Equal(t, "0123", text)
}

func TestFetcher_OfficeDownload(t *testing.T) {
	fake := newFakeDrive()
	fake.media["d1"] = docxBytes(t, "Paciente: Ana Gomez", "Obra Social: PAMI")
	f := NewDriveFetcher(newTestService(t, fake), testLimiter(), nil, DefaultConfig())

	text, err := f.FetchText(context.Background(), domain.SourceDocument{
		ID: "d1", Name: "ana.docx", MIMEType: MimeTypeDOCX, Format: domain.FormatBinaryOfficeDoc,
	})

	require.NoError(t, err)
	assert.Equal(t, "Paciente: Ana Gomez\nObra Social: PAMI", text)
}

func TestFetcher_OfficeDownloadTooLarge(t *testing.T) {
	fake := newFakeDrive()
	fake.media["d1"] = docxBytes(t, "Paciente: Ana Gomez")
	cfg := DefaultConfig()
	cfg.MaxContentSize = 10
	f := NewDriveFetcher(newTestService(t, fake), testLimiter(), nil, cfg)

	_, err := f.FetchText(context.Background(), domain.SourceDocument{
		ID: "d1", Name: "ana.docx", MIMEType: MimeTypeDOCX, Format: domain.FormatBinaryOfficeDoc,
	})

	assert.ErrorIs(t, err, domain.ErrFetch)
}

func TestFetcher_ConversionFailure(t *testing.T) {
	fake := newFakeDrive()
	fake.media["d1"] = []byte("definitely not a zip archive")
	f := NewDriveFetcher(newTestService(t, fake), testLimiter(), nil, DefaultConfig())

	_, err := f.FetchText(context.Background(), domain.SourceDocument{
		ID: "d1", Name: "roto.docx", MIMEType: MimeTypeDOCX, Format: domain.FormatBinaryOfficeDoc,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConversion)
	assert.Contains(t, err.Error(), "roto.docx")
}

func TestFetcher_NotFound(t *testing.T) {
	fake := newFakeDrive()
	f := NewDriveFetcher(newTestService(t, fake), testLimiter(), nil, DefaultConfig())

	_, err := f.FetchText(context.Background(), domain.SourceDocument{
		ID: "missing", Name: "x", Format: domain.FormatNativeRichDoc,
	})

	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFetcher_OtherFormatIsEmpty(t *testing.T) {
	f := NewFetcher()

	text, err := f.FetchText(context.Background(), domain.SourceDocument{ID: "p1", Format: domain.FormatOther})

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		mime string
		want domain.DocumentFormat
	}{
		{MimeTypeFolder, domain.FormatFolder},
		{MimeTypeGoogleDoc, domain.FormatNativeRichDoc},
		{MimeTypeDOCX, domain.FormatBinaryOfficeDoc},
		{MimeTypeODT, domain.FormatBinaryOfficeDoc},
		{MimeTypeRTF, domain.FormatBinaryOfficeDoc},
		{"TEXT/RTF", domain.FormatBinaryOfficeDoc},
		{"application/pdf", domain.FormatOther},
		{"application/vnd.google-apps.spreadsheet", domain.FormatOther},
		{"", domain.FormatOther},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.mime))
		})
	}
}

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(domain.DriveSettings{PageSize: 25, SharedDrives: false})

	assert.Equal(t, int64(25), cfg.PageSize)
	assert.False(t, cfg.SharedDrives)
	assert.Equal(t, int64(MaxExportSize), cfg.MaxContentSize)
}

func docxBytes(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString("<w:p><w:r><w:t>" + p + "</w:t></w:r></w:p>")
	}

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	doc, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = doc.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}
