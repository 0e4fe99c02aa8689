// Package rtf converts Rich Text Format documents to text.
//
// Paragraph and line breaks become newlines. Destination groups such as the
// font and colour tables, document info and embedded pictures are dropped.
// Hex escapes are decoded as Windows-1252 and \u escapes as Unicode.
package rtf

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
)

// Supported MIME types.
const (
	MIMEType     = "application/rtf"
	MIMETypeText = "text/rtf"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// destinations are groups whose content is never document text.
var destinations = map[string]bool{
	"fonttbl":            true,
	"colortbl":           true,
	"stylesheet":         true,
	"info":               true,
	"pict":               true,
	"object":             true,
	"header":             true,
	"headerl":            true,
	"headerr":            true,
	"headerf":            true,
	"footer":             true,
	"footerl":            true,
	"footerr":            true,
	"footerf":            true,
	"footnote":           true,
	"listtable":          true,
	"listoverridetable":  true,
	"rsidtbl":            true,
	"generator":          true,
	"themedata":          true,
	"colorschememapping": true,
	"latentstyles":       true,
	"datastore":          true,
	"xmlnstbl":           true,
	"fldinst":            true,
}

// Normaliser handles RTF documents.
type Normaliser struct{}

// New creates a new RTF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType, MIMETypeText}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of an RTF document, one line per paragraph.
func (n *Normaliser) Normalise(ctx context.Context, content []byte) (string, error) {
	if len(content) == 0 {
		return "", domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body := bytes.TrimLeft(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf")), " \t\r\n")
	if !bytes.HasPrefix(body, []byte(`{\rtf`)) {
		return "", fmt.Errorf("%w: not an rtf document", domain.ErrConversion)
	}

	text, err := parse(body)
	if err != nil {
		return "", err
	}
	return tidy(text), nil
}

type group struct {
	skip bool
	uc   int
}

type parser struct {
	src   []byte
	pos   int
	out   strings.Builder
	stack []group
	cur   group
	// fresh is set right after '{' until the first token of the group.
	fresh bool
	// pending counts fallback characters still to drop after a \u escape.
	pending int
}

func parse(src []byte) (string, error) {
	p := &parser{src: src, cur: group{uc: 1}}

	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '{':
			p.stack = append(p.stack, p.cur)
			p.fresh = true
			p.pending = 0
			p.pos++
		case '}':
			if len(p.stack) == 0 {
				return "", fmt.Errorf("%w: unbalanced group at byte %d", domain.ErrConversion, p.pos)
			}
			p.cur = p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.fresh = false
			p.pending = 0
			p.pos++
		case '\\':
			p.control()
		case '\r', '\n':
			p.pos++
		default:
			p.fresh = false
			p.pos++
			p.char(charmap.Windows1252.DecodeByte(c))
		}
	}

	if len(p.stack) != 0 {
		return "", fmt.Errorf("%w: %d unclosed groups", domain.ErrConversion, len(p.stack))
	}
	return p.out.String(), nil
}

// control consumes one control word or control symbol.
func (p *parser) control() {
	p.pos++
	if p.pos >= len(p.src) {
		return
	}

	c := p.src[p.pos]
	if !isLetter(c) {
		p.pos++
		fresh := p.fresh
		p.fresh = false
		switch c {
		case '\\', '{', '}':
			p.char(rune(c))
		case '\'':
			if p.pos+2 <= len(p.src) {
				if b, err := strconv.ParseUint(string(p.src[p.pos:p.pos+2]), 16, 8); err == nil {
					p.pos += 2
					p.char(charmap.Windows1252.DecodeByte(byte(b)))
				}
			}
		case '*':
			if fresh {
				p.cur.skip = true
			}
		case '~':
			p.char(' ')
		case '_':
			p.char('-')
		case '\r', '\n':
			p.emit('\n')
		}
		return
	}

	start := p.pos
	for p.pos < len(p.src) && isLetter(p.src[p.pos]) {
		p.pos++
	}
	word := string(p.src[start:p.pos])

	paramStart := p.pos
	if p.pos < len(p.src) && p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	param, hasParam := 0, p.pos > paramStart
	if hasParam {
		param, _ = strconv.Atoi(string(p.src[paramStart:p.pos]))
	}
	if p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}

	if p.fresh && destinations[word] {
		p.cur.skip = true
	}
	p.fresh = false

	switch word {
	case "par", "line", "sect", "page", "row":
		p.emit('\n')
	case "tab", "cell":
		p.emit('\t')
	case "uc":
		if hasParam && param >= 0 {
			p.cur.uc = param
		}
	case "u":
		if hasParam {
			if param < 0 {
				param += 65536
			}
			p.emit(rune(param))
			p.pending = p.cur.uc
		}
	}
}

// char writes document text, dropping \u fallback characters.
func (p *parser) char(r rune) {
	if p.pending > 0 {
		p.pending--
		return
	}
	p.emit(r)
}

func (p *parser) emit(r rune) {
	if p.cur.skip {
		return
	}
	p.out.WriteRune(r)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// tidy trims every line and drops the surrounding blank lines.
func tidy(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(strings.TrimLeft(line, " "), " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
