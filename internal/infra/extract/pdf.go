package extract

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// extractPDF reads every page's content stream in page order. Pages without
// text operators (scanned pages) contribute an empty string.
func extractPDF(path string) (text string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", extractionError("open pdf", err)
	}
	defer f.Close()

	// pdfcpu panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", extractionError("pdfcpu", fmt.Errorf("panic: %v", r))
		}
	}()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return "", extractionError("pdfcpu read", err)
	}

	pages := make([]string, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pages = append(pages, pageText(ctx, pageNr))
	}
	return strings.Join(pages, "\n"), nil
}

func pageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	return textFromContentStream(data)
}

// wordSpaceKern is the TJ displacement (thousandths of text space) at or
// below which a gap is read as a word break. pdfTeX emits -333 between words.
const wordSpaceKern = -300

// textFromContentStream collects string operands of the text-showing operators
// (Tj, TJ, ', ") and turns positioning operators into line breaks.
func textFromContentStream(data []byte) string {
	var sb strings.Builder
	var operands []csToken

	lex := &csLexer{data: data}
	for {
		tok, ok := lex.next()
		if !ok {
			break
		}
		if tok.kind != tokOperator {
			operands = append(operands, tok)
			continue
		}

		switch tok.text {
		case "Tj":
			sb.WriteString(lastString(operands))
		case "'", `"`:
			newline(&sb)
			sb.WriteString(lastString(operands))
		case "TJ":
			writeTJ(&sb, operands)
		case "Td", "TD":
			// a purely horizontal move separates words, anything else starts a line
			if n := len(operands); n >= 2 && operands[n-1].kind == tokNumber && operands[n-1].num == 0 {
				sb.WriteByte(' ')
			} else {
				newline(&sb)
			}
		case "T*", "ET":
			newline(&sb)
		case "ID":
			lex.skipInlineImage()
		}
		operands = operands[:0]
	}
	return cleanLines(sb.String())
}

func newline(sb *strings.Builder) {
	if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
		sb.WriteByte('\n')
	}
}

func lastString(operands []csToken) string {
	for i := len(operands) - 1; i >= 0; i-- {
		if operands[i].kind == tokString {
			return operands[i].text
		}
	}
	return ""
}

func writeTJ(sb *strings.Builder, operands []csToken) {
	for i := len(operands) - 1; i >= 0; i-- {
		if operands[i].kind != tokArray {
			continue
		}
		for _, item := range operands[i].items {
			switch item.kind {
			case tokString:
				sb.WriteString(item.text)
			case tokNumber:
				if item.num <= wordSpaceKern && !strings.HasSuffix(sb.String(), " ") {
					sb.WriteByte(' ')
				}
			}
		}
		return
	}
}

type tokKind int

const (
	tokOperator tokKind = iota
	tokString
	tokNumber
	tokArray
	tokClose
	tokOther
)

type csToken struct {
	kind  tokKind
	text  string // operator name, decoded string, or closing delimiter
	num   float64
	items []csToken
}

// csLexer splits a content stream into operands and operators.
type csLexer struct {
	data []byte
	pos  int
}

func (l *csLexer) next() (csToken, bool) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return csToken{}, false
	}

	c := l.data[l.pos]
	switch {
	case c == '(':
		l.pos++
		return csToken{kind: tokString, text: l.literal()}, true
	case c == '<' && l.peek(1) == '<':
		l.pos += 2
		l.collect(">>")
		return csToken{kind: tokOther}, true
	case c == '<':
		l.pos++
		return csToken{kind: tokString, text: l.hex()}, true
	case c == '[':
		l.pos++
		return csToken{kind: tokArray, items: l.collect("]")}, true
	case c == '>' && l.peek(1) == '>':
		l.pos += 2
		return csToken{kind: tokClose, text: ">>"}, true
	case c == ']' || c == '>' || c == ')' || c == '{' || c == '}':
		l.pos++
		return csToken{kind: tokClose, text: string(c)}, true
	case c == '/':
		l.pos++
		return csToken{kind: tokOther, text: l.regular()}, true
	}

	word := l.regular()
	if n, err := strconv.ParseFloat(word, 64); err == nil {
		return csToken{kind: tokNumber, num: n}, true
	}
	return csToken{kind: tokOperator, text: word}, true
}

// collect reads tokens up to the matching close delimiter or the end of data.
func (l *csLexer) collect(closer string) []csToken {
	var items []csToken
	for {
		tok, ok := l.next()
		if !ok {
			return items
		}
		if tok.kind == tokClose {
			if tok.text == closer {
				return items
			}
			continue
		}
		items = append(items, tok)
	}
}

func (l *csLexer) peek(off int) byte {
	if l.pos+off < len(l.data) {
		return l.data[l.pos+off]
	}
	return 0
}

func (l *csLexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isPDFSpace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *csLexer) regular() string {
	start := l.pos
	for l.pos < len(l.data) && !isPDFSpace(l.data[l.pos]) && !isPDFDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// literal decodes a (...) string; the opening parenthesis is already consumed.
// Balanced parentheses and backslash escapes follow the PDF literal string rules.
func (l *csLexer) literal() string {
	var buf []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '\\':
			buf = l.escape(buf)
		case '(':
			depth++
			buf = append(buf, c)
		case ')':
			depth--
			if depth == 0 {
				return decodeText(buf)
			}
			buf = append(buf, c)
		default:
			buf = append(buf, c)
		}
	}
	return decodeText(buf)
}

func (l *csLexer) escape(buf []byte) []byte {
	if l.pos >= len(l.data) {
		return buf
	}
	c := l.data[l.pos]
	l.pos++
	switch c {
	case 'n':
		return append(buf, '\n')
	case 'r':
		return append(buf, '\r')
	case 't':
		return append(buf, '\t')
	case 'b':
		return append(buf, '\b')
	case 'f':
		return append(buf, '\f')
	case '\r':
		// line continuation
		if l.pos < len(l.data) && l.data[l.pos] == '\n' {
			l.pos++
		}
		return buf
	case '\n':
		return buf
	}
	if c < '0' || c > '7' {
		return append(buf, c)
	}
	val := int(c - '0')
	for n := 1; n < 3 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; n++ {
		val = val*8 + int(l.data[l.pos]-'0')
		l.pos++
	}
	return append(buf, byte(val))
}

// hex decodes a <...> string; the opening bracket is already consumed.
// A missing final digit counts as 0.
func (l *csLexer) hex() string {
	var digits []byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			break
		}
		if isHexDigit(c) {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	raw, err := hex.DecodeString(string(digits))
	if err != nil {
		return ""
	}
	return decodeText(raw)
}

// skipInlineImage jumps over the binary data between ID and EI.
func (l *csLexer) skipInlineImage() {
	for i := l.pos; i+1 < len(l.data); i++ {
		if l.data[i] != 'E' || l.data[i+1] != 'I' {
			continue
		}
		before := i == 0 || isPDFSpace(l.data[i-1])
		after := i+2 == len(l.data) || isPDFSpace(l.data[i+2])
		if before && after {
			l.pos = i + 2
			return
		}
	}
	l.pos = len(l.data)
}

// decodeText turns string operand bytes into UTF-8: UTF-16BE when the string
// carries a byte order mark, as is when already valid UTF-8, else byte per rune.
func decodeText(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		units := make([]uint16, 0, (len(b)-2)/2)
		for i := 2; i+1 < len(b); i += 2 {
			units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(units))
	}
	if utf8.Valid(b) {
		return string(b)
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

func isPDFSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isPDFDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// cleanLines collapses runs of spaces inside each line and drops empty lines.
func cleanLines(text string) string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}
