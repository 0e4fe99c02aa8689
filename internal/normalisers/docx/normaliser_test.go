package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/salasync/internal/core/domain"
)

// createTestDOCX creates a minimal valid DOCX file in memory.
func createTestDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))
	require.NoError(t, err)

	if documentXML != "" {
		doc, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func wrapBody(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>` + body + `</w:body>
</w:document>`
}

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.Equal(t, []string{MIMEType}, normaliser.SupportedMIMETypes())
	assert.Equal(t, 50, normaliser.Priority())
}

func TestNormalise_Paragraphs(t *testing.T) {
	content := createTestDOCX(t, wrapBody(`
<w:p><w:r><w:t>Paciente: Juan Perez</w:t></w:r></w:p>
<w:p><w:r><w:t>DNI: 30.111.222</w:t></w:r></w:p>
<w:p><w:r><w:t>Obra Social: OSDE</w:t></w:r></w:p>`))

	text, err := New().Normalise(context.Background(), content)

	require.NoError(t, err)
	assert.Equal(t, "Paciente: Juan Perez\nDNI: 30.111.222\nObra Social: OSDE", text)
}

func TestNormalise_MultipleRuns(t *testing.T) {
	content := createTestDOCX(t, wrapBody(`
<w:p>
<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Diagnóstico: </w:t></w:r>
<w:r><w:t>TEA</w:t></w:r>
</w:p>`))

	text, err := New().Normalise(context.Background(), content)

	require.NoError(t, err)
	assert.Equal(t, "Diagnóstico: TEA", text)
}

func TestNormalise_TableCellsAndBreaks(t *testing.T) {
	content := createTestDOCX(t, wrapBody(`
<w:tbl><w:tr>
<w:tc><w:p><w:r><w:t>Nombre:</w:t><w:tab/><w:t>Ana</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>Línea 1</w:t><w:br/><w:t>Línea 2</w:t></w:r></w:p></w:tc>
</w:tr></w:tbl>`))

	text, err := New().Normalise(context.Background(), content)

	require.NoError(t, err)
	assert.Equal(t, "Nombre:\tAna\nLínea 1\nLínea 2", text)
}

func TestNormalise_TabStopsAreNotText(t *testing.T) {
	content := createTestDOCX(t, wrapBody(`
<w:p>
<w:pPr><w:tabs><w:tab w:val="left" w:pos="2268"/><w:tab w:val="right" w:pos="9072"/></w:tabs></w:pPr>
<w:r><w:t>Paciente: Ana Gomez</w:t></w:r>
</w:p>
<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="1134"/></w:tabs></w:pPr><w:r><w:t>DNI:</w:t><w:tab/><w:t>12.345.678</w:t></w:r></w:p>`))

	text, err := New().Normalise(context.Background(), content)

	require.NoError(t, err)
	assert.Equal(t, "Paciente: Ana Gomez\nDNI:\t12.345.678", text)
}

func TestNormalise_EmptyBody(t *testing.T) {
	content := createTestDOCX(t, wrapBody(""))

	text, err := New().Normalise(context.Background(), content)

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestNormalise_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		wantErr error
	}{
		{"empty content", nil, domain.ErrInvalidInput},
		{"not a zip", []byte("not a zip file"), domain.ErrConversion},
		{"missing document part", createTestDOCX(t, ""), domain.ErrConversion},
		{"malformed xml", createTestDOCX(t, "<w:document><w:body><w:p>"), domain.ErrConversion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Normalise(context.Background(), tt.content)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalise_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Normalise(ctx, createTestDOCX(t, wrapBody("")))

	assert.ErrorIs(t, err, context.Canceled)
}
