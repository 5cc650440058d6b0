// Package encoding normalizes uploaded spreadsheets to UTF-8. Exports from
// Brazilian office suites are frequently Windows-1252 or ISO-8859-1.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	CharsetUTF8        = "UTF-8"
	CharsetUTF16LE     = "UTF-16LE"
	CharsetUTF16BE     = "UTF-16BE"
	CharsetWindows1252 = "windows-1252"
	CharsetISO88591    = "ISO-8859-1"
	CharsetISO885915   = "ISO-8859-15"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// peekSize bounds how much of the upload is sniffed.
const peekSize = 8192

// latin maps chardet names for the single-byte Latin charsets we accept.
var latin = map[string]encoding.Encoding{
	CharsetWindows1252: charmap.Windows1252,
	CharsetISO88591:    charmap.ISO8859_1,
	CharsetISO885915:   charmap.ISO8859_15,
}

// Detect returns a UTF-8 reader over r and the name of the source charset.
//
// A byte order mark wins. Otherwise valid UTF-8 passes through, chardet picks
// among the Latin charsets, and anything unrecognized is read as Windows-1252.
func Detect(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, peekSize)

	buf, err := br.Peek(peekSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, CharsetUTF8, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, dec), CharsetUTF16LE, nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, dec), CharsetUTF16BE, nil
	}

	if validUTF8Prefix(buf) {
		return br, CharsetUTF8, nil
	}

	if res, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		if res.Charset == CharsetUTF8 {
			return br, CharsetUTF8, nil
		}

		if enc, ok := latin[res.Charset]; ok {
			return transform.NewReader(br, enc.NewDecoder()), res.Charset, nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), CharsetWindows1252, nil
}

// validUTF8Prefix is utf8.Valid tolerant of a multi-byte rune cut by the
// peek boundary.
func validUTF8Prefix(buf []byte) bool {
	if utf8.Valid(buf) {
		return true
	}

	for cut := 1; cut < utf8.UTFMax && cut < len(buf); cut++ {
		if utf8.Valid(buf[:len(buf)-cut]) {
			return !utf8.FullRune(buf[len(buf)-cut:])
		}
	}

	return false
}
