// Package encoding normalizes booking-platform exports to UTF-8.
// PawSoft desktop installs write CSV in the machine's legacy codepage,
// while cloud exports ship UTF-8 with or without a BOM.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// peekSize covers BOM detection plus enough text for charset heuristics.
const peekSize = 4096

// NewUTF8Reader wraps r in a reader that yields UTF-8, and reports the
// charset it decided on so callers can log it.
//
// Detection order: BOM, valid-UTF-8 check, chardet heuristics, then a
// Windows-1252 fallback (the safe superset of Latin-1 for PawSoft files).
func NewUTF8Reader(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReader(r)

	buf, err := br.Peek(peekSize)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("peeking input: %w", err)
	}

	if bytes.HasPrefix(buf, bomUTF8) {
		_, _ = br.Discard(len(bomUTF8))
		return br, "UTF-8", nil
	}

	if bytes.HasPrefix(buf, bomUTF16LE) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, dec), "UTF-16LE", nil
	}

	if bytes.HasPrefix(buf, bomUTF16BE) {
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, dec), "UTF-16BE", nil
	}

	if utf8.Valid(buf) {
		return br, "UTF-8", nil
	}

	if name, dec := detect(buf); dec != nil {
		return transform.NewReader(br, dec), name, nil
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), "windows-1252", nil
}

// detect runs chardet over the sample and maps the charsets PawSoft
// exports actually show up in. Anything else falls through to the caller's
// Windows-1252 fallback.
func detect(buf []byte) (string, transform.Transformer) {
	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err != nil {
		return "", nil
	}

	switch result.Charset {
	case "ISO-8859-1", "windows-1252":
		return "windows-1252", charmap.Windows1252.NewDecoder()
	case "ISO-8859-15":
		return "ISO-8859-15", charmap.ISO8859_15.NewDecoder()
	case "ISO-8859-9":
		return "ISO-8859-9", charmap.ISO8859_9.NewDecoder()
	}

	return "", nil
}
