package rtf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/salasync/internal/core/domain"
)

func TestNew(t *testing.T) {
	n := New()

	require.NotNil(t, n)
	assert.Equal(t, 50, n.Priority())
	assert.Equal(t, []string{MIMEType, MIMETypeText}, n.SupportedMIMETypes())
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "minimal document",
			in:   `{\rtf1\ansi Paciente: Ana Gomez\par DNI: 12.345.678\par}`,
			want: "Paciente: Ana Gomez\nDNI: 12.345.678",
		},
		{
			name: "font table is dropped",
			in:   `{\rtf1\ansi\deff0{\fonttbl{\f0 Arial;}}\pard\f0 Paciente: Ana Gomez\par DNI: 12.345.678\par}`,
			want: "Paciente: Ana Gomez\nDNI: 12.345.678",
		},
		{
			name: "colour table, info and ignorable destinations",
			in: "{\\rtf1\\ansi{\\fonttbl{\\f0\\fswiss Calibri;}}{\\colortbl;\\red0\\green0\\blue0;}" +
				"{\\info{\\author Secretaria}}{\\*\\generator Riched20 10.0;}\r\n" +
				"\\pard\\sa200\\f0\\fs22 Nombre: Juan Perez\\line Obra Social: OSDE\\par\r\n}",
			want: "Nombre: Juan Perez\nObra Social: OSDE",
		},
		{
			name: "hex escapes are windows-1252",
			in:   `{\rtf1\ansi\ansicpg1252 Diagn\'f3stico: TEA\par}`,
			want: "Diagnóstico: TEA",
		},
		{
			name: "unicode escapes skip the fallback character",
			in:   `{\rtf1\ansi\uc1 Diagn\u243?stico: TEA\par}`,
			want: "Diagnóstico: TEA",
		},
		{
			name: "escaped braces and tabs",
			in:   `{\rtf1 Dx:\tab TEA \{leve\}\par}`,
			want: "Dx:\tTEA {leve}",
		},
		{
			name: "leading whitespace before header",
			in:   "\r\n  {\\rtf1 Paciente: Ana\\par}",
			want: "Paciente: Ana",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := New().Normalise(context.Background(), []byte(tt.in))

			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestNormalise_RejectsNonRTF(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"plain text", "Paciente: Falso Nombre"},
		{"zip archive", "PK\x03\x04\x00garbage"},
		{"unclosed group", `{\rtf1 Paciente: Ana\par`},
		{"extra closing brace", `{\rtf1 Paciente: Ana}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Normalise(context.Background(), []byte(tt.in))

			assert.ErrorIs(t, err, domain.ErrConversion)
		})
	}
}

func TestNormalise_EmptyContent(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Normalise(ctx, []byte(`{\rtf1 x}`))

	assert.ErrorIs(t, err, context.Canceled)
}
