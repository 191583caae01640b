package xmlstream

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding identifies the transfer encoding the decoder's BOM/<?xml?> sniff
// picked, per spec.md §4.B.
type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingUTF16LE
	EncodingUTF16BE
	EncodingLatin1 // a declared ISO-8859-1/latin1 or windows-1252 document
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF16LE:
		return "UTF-16LE"
	case EncodingUTF16BE:
		return "UTF-16BE"
	case EncodingLatin1:
		return "ISO-8859-1"
	default:
		return "UTF-8"
	}
}

// sniffWindow bounds how many raw bytes the decoder buffers up front to run
// the BOM and <?xml ...?> sniff (spec.md §4.B steps 1-3). 256 bytes is far
// more than any legal XML declaration needs.
const sniffWindow = 256

// byteSourceReader adapts a ByteSource to io.Reader so the x/text
// transcoders (which only speak io.Reader) can sit on top of one.
type byteSourceReader struct{ src ByteSource }

func (r byteSourceReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, err := r.src.NextByte()
	if err != nil {
		return 0, err
	}
	p[0] = b
	return 1, nil
}

// Decoder turns a ByteSource into a position-tracked stream of XML 1.0
// code points (spec.md §4.B, component B).
type Decoder struct {
	enc Encoding
	r   *bufio.Reader

	offset int
	line   int
	column int
}

// DecoderOptions configures encoding detection.
type DecoderOptions struct {
	// AllowLegacyCharsets permits a declared encoding="ISO-8859-1" (or
	// windows-1252/latin1) document to be transcoded via
	// golang.org/x/text/encoding/charmap, per spec.md §4.B's "optionally
	// Latin-1/ASCII". Without it such a declaration is InvalidEncoding.
	AllowLegacyCharsets bool
}

// NewDecoder sniffs src's encoding and returns a Decoder positioned right
// after any BOM, ready to yield code points via NextRune.
func NewDecoder(src ByteSource, opts DecoderOptions) (*Decoder, error) {
	prefix, readErr := readUpTo(src, sniffWindow)
	if readErr != nil && readErr != io.EOF && len(prefix) == 0 {
		return nil, &Error{Kind: ErrIO, Msg: readErr.Error(), Err: readErr}
	}

	enc, bomLen := sniffBOM(prefix)
	rest := prefix[bomLen:]
	if bomLen == 0 {
		enc = sniffContent(rest)
	}

	legacy := charmap.ISO8859_1
	if declared, ok := sniffDeclaredEncoding(rest); ok {
		switch declared {
		case "utf-8", "utf8":
			if enc != EncodingUTF8 {
				return nil, newErr(ErrInvalidEncoding, Position{}, "declared encoding %q conflicts with detected %s", declared, enc)
			}
		case "utf-16", "utf-16le", "utf-16be":
			if enc != EncodingUTF16LE && enc != EncodingUTF16BE {
				return nil, newErr(ErrInvalidEncoding, Position{}, "declared encoding %q conflicts with detected %s", declared, enc)
			}
		case "iso-8859-1", "windows-1252", "latin1", "latin-1":
			if !opts.AllowLegacyCharsets {
				return nil, newErr(ErrInvalidEncoding, Position{}, "declared encoding %q requires AllowLegacyCharsets", declared)
			}
			enc = EncodingLatin1
			if declared == "windows-1252" {
				legacy = charmap.Windows1252
			}
		default:
			return nil, newErr(ErrInvalidEncoding, Position{}, "unsupported declared encoding %q", declared)
		}
	}

	raw := io.MultiReader(bytes.NewReader(rest), byteSourceReader{src})

	var transcoded io.Reader
	switch enc {
	case EncodingUTF16LE:
		transcoded = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Reader(raw)
	case EncodingUTF16BE:
		transcoded = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Reader(raw)
	case EncodingLatin1:
		transcoded = legacy.NewDecoder().Reader(raw)
	default:
		transcoded = raw
	}

	return &Decoder{
		enc:    enc,
		r:      bufio.NewReaderSize(transcoded, minBufferSize),
		line:   1,
		column: 1,
	}, nil
}

// Encoding reports the encoding this decoder settled on.
func (d *Decoder) Encoding() Encoding { return d.enc }

func readUpTo(src ByteSource, n int) ([]byte, error) {
	buf := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		b, err := src.NextByte()
		if err != nil {
			return buf, err
		}
		buf = append(buf, b)
	}
	return buf, nil
}

// sniffBOM implements spec.md §4.B step 1.
func sniffBOM(b []byte) (Encoding, int) {
	switch {
	case len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF:
		return EncodingUTF8, 3
	case len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF:
		return EncodingUTF16BE, 2
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFE:
		return EncodingUTF16LE, 2
	default:
		return EncodingUTF8, 0
	}
}

// sniffContent implements spec.md §4.B step 2, for when no BOM is present.
func sniffContent(b []byte) Encoding {
	switch {
	case len(b) >= 4 && b[0] == 0x3C && b[1] == 0x3F && b[2] == 0x78 && b[3] == 0x6D:
		return EncodingUTF8
	case len(b) >= 4 && b[0] == 0x00 && b[1] == 0x3C && b[2] == 0x00 && b[3] == 0x3F:
		return EncodingUTF16BE
	case len(b) >= 4 && b[0] == 0x3C && b[1] == 0x00 && b[2] == 0x3F && b[3] == 0x00:
		return EncodingUTF16LE
	default:
		return EncodingUTF8
	}
}

// sniffDeclaredEncoding looks for encoding="..." inside a leading
// <?xml ...?> declaration, per spec.md §4.B step 3. It operates on the raw,
// not-yet-transcoded bytes, which is only meaningful for the UTF-8 family;
// for UTF-16 inputs the declaration is ASCII-compatible once every other
// byte is the 0x00 filler, so a byte-wise scan for the ASCII letters still
// finds it well enough to extract the label.
func sniffDeclaredEncoding(b []byte) (string, bool) {
	clean := stripNulBytes(b)
	if !bytes.HasPrefix(clean, []byte("<?xml")) {
		return "", false
	}
	end := bytes.Index(clean, []byte("?>"))
	if end == -1 {
		end = len(clean)
	}
	decl := clean[:end]
	idx := bytes.Index(decl, []byte("encoding"))
	if idx == -1 {
		return "", false
	}
	rest := decl[idx+len("encoding"):]
	rest = bytes.TrimLeft(rest, " \t\r\n")
	if len(rest) == 0 || rest[0] != '=' {
		return "", false
	}
	rest = bytes.TrimLeft(rest[1:], " \t\r\n")
	if len(rest) == 0 || (rest[0] != '"' && rest[0] != '\'') {
		return "", false
	}
	quote := rest[0]
	rest = rest[1:]
	q := bytes.IndexByte(rest, quote)
	if q == -1 {
		return "", false
	}
	return strings.ToLower(string(rest[:q])), true
}

func stripNulBytes(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c != 0 {
			out = append(out, c)
		}
	}
	return out
}

// NextRune returns the next XML 1.0 Char, normalizing CR and CRLF to a
// single '\n' (spec.md §4.B step 4) and rejecting code points outside the
// Char production (step 5). Returns io.EOF when the stream is exhausted.
func (d *Decoder) NextRune() (rune, Position, error) {
	r, size, err := d.r.ReadRune()
	if err != nil {
		if err == io.EOF {
			return 0, d.pos(), io.EOF
		}
		return 0, d.pos(), &Error{Kind: ErrDecode, Position: d.pos(), Msg: err.Error(), Err: err}
	}
	if r == utf8.RuneError && size == 1 {
		return 0, d.pos(), newErr(ErrDecode, d.pos(), "invalid byte sequence")
	}

	pos := d.pos()
	consumed := size

	if r == '\r' {
		if next, nsize, err2 := d.r.ReadRune(); err2 == nil {
			if next == '\n' {
				consumed += nsize
			} else {
				_ = d.r.UnreadRune()
			}
		}
		d.advance('\n', consumed)
		return '\n', pos, nil
	}

	if !isXMLChar(r) {
		return 0, pos, newErr(ErrInvalidCharacter, pos, "character U+%04X is not permitted in XML 1.0", r)
	}

	d.advance(r, consumed)
	return r, pos, nil
}

func (d *Decoder) pos() Position {
	return Position{Offset: d.offset, Line: d.line, Column: d.column}
}

func (d *Decoder) advance(r rune, size int) {
	d.offset += size
	if r == '\n' {
		d.line++
		d.column = 1
	} else {
		d.column++
	}
}

// isXMLChar is the XML 1.0 Char production: surrogates and most C0 control
// codes are forbidden.
func isXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	default:
		return false
	}
}

// IsValidCharRefValue reports whether a numeric character reference's
// decoded value passes the same Char range check as decoder output
// (spec.md §4.C "the decoded value must pass the same Char range check").
func IsValidCharRefValue(v rune) bool {
	return isXMLChar(v)
}
