package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/pentesthub/pentest-hub/pkg/types"
)

var gzipMagic = []byte{0x1f, 0x8b}

// maxDecompressedSize bounds the XML a gzip upload may expand to.
var maxDecompressedSize int64 = 256 << 20

// decompress returns raw unchanged unless it starts with the gzip magic bytes.
func decompress(raw []byte) ([]byte, error) {
	if !bytes.HasPrefix(raw, gzipMagic) {
		return raw, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid gzip stream: %v", types.ErrMalformedInput, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(io.LimitReader(zr, maxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid gzip stream: %v", types.ErrMalformedInput, err)
	}
	if int64(len(out)) > maxDecompressedSize {
		return nil, fmt.Errorf("%w: gzip stream expands beyond %d bytes", types.ErrMalformedInput, maxDecompressedSize)
	}
	return out, nil
}

// forEachElement walks the whole document and calls fn for every element named
// local below the root element. fn must consume the element, typically with
// DecodeElement. The document must be well-formed with exactly one root element.
func forEachElement(raw []byte, local string, fn func(d *xml.Decoder, start xml.StartElement) error) error {
	raw, err := decompress(raw)
	if err != nil {
		return err
	}

	d := xml.NewDecoder(bytes.NewReader(raw))
	depth := 0
	roots := 0
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", types.ErrMalformedInput, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return fmt.Errorf("%w: multiple root elements", types.ErrMalformedInput)
				}
			}
			if depth > 0 && t.Name.Local == local {
				if err := fn(d, t); err != nil {
					return err
				}
				continue
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && strings.TrimSpace(string(t)) != "" {
				return fmt.Errorf("%w: text outside of root element", types.ErrMalformedInput)
			}
		}
	}

	if roots == 0 {
		return fmt.Errorf("%w: no root element", types.ErrMalformedInput)
	}
	return nil
}

// first returns the first value or nil when there is none.
func first(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

// value dereferences s, returning "" for nil.
func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
