package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/crimson-sun/vlogscan/internal/model"
)

// MaxLineBytes bounds a single input line. Longer lines are cut to this
// length and marked Truncated; reading continues with the next line.
const MaxLineBytes = 1 << 20

const ctxCheckEvery = 4096

var gzipMagic = []byte{0x1f, 0x8b}

// ReadLines decodes r into lines tagged with name. Gzip input is detected by
// its magic bytes. Bytes are decoded as UTF-8 with a leading BOM removed and
// invalid sequences replaced by U+FFFD, so a bad byte never aborts a read.
// Blank lines are skipped but still counted for numbering.
func ReadLines(ctx context.Context, name string, r io.Reader) ([]model.Line, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(gzipMagic)); err == nil && bytes.Equal(head, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%s: open gzip: %w", name, err)
		}
		defer zr.Close()
		r = zr
	} else {
		r = br
	}

	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	rd := bufio.NewReaderSize(decoded, 64*1024)

	var (
		lines []model.Line
		buf   []byte
	)
	n := 0
	for {
		raw, truncated, err := readLine(rd, buf[:0])
		buf = raw
		if err == io.EOF && len(raw) == 0 {
			return lines, nil
		}
		if err != nil && err != io.EOF {
			return lines, fmt.Errorf("%s: line %d: %w", name, n+1, err)
		}
		n++
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return lines, err
			}
		}
		text := string(raw)
		if truncated {
			// The cut may split a rune.
			text = strings.ToValidUTF8(text, "")
		}
		if strings.TrimSpace(text) != "" {
			lines = append(lines, model.Line{Source: name, Number: n, Text: text, Truncated: truncated})
		}
		if err == io.EOF {
			return lines, nil
		}
	}
}

// readLine appends the next line of rd to buf without its line ending,
// keeping at most MaxLineBytes and discarding the rest of the line.
func readLine(rd *bufio.Reader, buf []byte) (line []byte, truncated bool, err error) {
	for {
		frag, isPrefix, err := rd.ReadLine()
		if err != nil {
			return buf, truncated, err
		}
		if room := MaxLineBytes - len(buf); len(frag) > room {
			frag = frag[:room]
			truncated = true
		}
		buf = append(buf, frag...)
		if !isPrefix {
			return buf, truncated, nil
		}
	}
}
