package xmlstream

import (
	"io"
	"strconv"
	"strings"
)

// lexerMode tracks which production the cursor-based classifier is inside:
// free-running character data, or the inside of a start/end tag's angle
// brackets. Self-contained markup (PI/comment/CDATA/DOCTYPE) is consumed
// whole from modeText and never changes the mode.
type lexerMode int

const (
	modeText lexerMode = iota
	modeTag
)

// Lexer classifies a decoded rune stream into the token vocabulary of
// spec.md §4.C. It is a classifier, not a validator of document structure:
// the pull parser (parser.go) is what enforces well-formedness across
// tokens.
//
// Grounded on the byte-cursor scanning style of
// other_examples/bored-engineer-fastxml (parseElement/parsePotentialDirective),
// adapted here to run over decoded runes with position tracking instead of
// raw byte slices, since spec.md §4.B requires the decoder to sit below it.
type Lexer struct {
	dec  *Decoder
	buf  *runePos
	mode lexerMode
}

type runePos struct {
	r   rune
	pos Position
	err error
}

// NewLexer constructs a Lexer reading from dec.
func NewLexer(dec *Decoder) *Lexer {
	return &Lexer{dec: dec, mode: modeText}
}

func (l *Lexer) read() (rune, Position, error) {
	if l.buf != nil {
		rp := *l.buf
		l.buf = nil
		return rp.r, rp.pos, rp.err
	}
	return l.dec.NextRune()
}

func (l *Lexer) unread(r rune, pos Position, err error) {
	l.buf = &runePos{r: r, pos: pos, err: err}
}

func (l *Lexer) peek() (rune, Position, error) {
	r, pos, err := l.read()
	l.unread(r, pos, err)
	return r, pos, err
}

func unexpectedEOF(pos Position) error {
	return newErr(ErrUnexpectedEOF, pos, "unexpected end of input")
}

// Next returns the next lexical token. It never returns inside a
// multi-character delimiter: InCommentBody-equivalent scanning runs until
// "-->"  and emits a single Comment token in one call, per spec.md §4.C.
func (l *Lexer) Next() (Token, error) {
	if l.mode == modeTag {
		return l.nextInTag()
	}
	return l.nextInText()
}

func (l *Lexer) nextInText() (Token, error) {
	r, pos, err := l.peek()
	if err != nil {
		if err == io.EOF {
			return Token{Kind: TokEOF, Pos: pos}, nil
		}
		return Token{}, err
	}

	switch r {
	case '<':
		l.read()
		return l.afterLT(pos)
	case '&':
		l.read()
		return l.afterAmp(pos)
	default:
		return l.readCharData(pos)
	}
}

func (l *Lexer) afterLT(startPos Position) (Token, error) {
	r, pos, err := l.peek()
	if err != nil {
		return Token{}, unexpectedEOF(pos)
	}
	switch r {
	case '?':
		l.read()
		return l.parsePI(startPos)
	case '!':
		l.read()
		return l.afterBang(startPos)
	case '/':
		l.read()
		l.mode = modeTag
		return Token{Kind: TokEndTagStart, Pos: startPos}, nil
	default:
		if !isNameStartChar(r) {
			return Token{}, newErr(ErrBadName, pos, "expected name after '<', got %q", r)
		}
		l.mode = modeTag
		return Token{Kind: TokOpenTagStart, Pos: startPos}, nil
	}
}

func (l *Lexer) afterBang(startPos Position) (Token, error) {
	r, pos, err := l.peek()
	if err != nil {
		return Token{}, unexpectedEOF(pos)
	}
	switch r {
	case '-':
		if err := l.expectLiteral("--"); err != nil {
			return Token{}, err
		}
		return l.parseComment(startPos)
	case '[':
		if err := l.expectLiteral("[CDATA["); err != nil {
			return Token{}, err
		}
		return l.parseCDATA(startPos)
	case 'D':
		if err := l.expectLiteral("DOCTYPE"); err != nil {
			return Token{}, err
		}
		return l.parseDoctype(startPos)
	default:
		return Token{}, newErr(ErrBadName, pos, "unrecognized markup declaration")
	}
}

func (l *Lexer) expectLiteral(lit string) error {
	for _, want := range lit {
		r, pos, err := l.read()
		if err != nil {
			return unexpectedEOF(pos)
		}
		if r != want {
			return newErr(ErrBadName, pos, "malformed markup declaration, expected %q", lit)
		}
	}
	return nil
}

func (l *Lexer) afterAmp(startPos Position) (Token, error) {
	r, pos, err := l.peek()
	if err != nil {
		return Token{}, unexpectedEOF(pos)
	}
	if r == '#' {
		l.read()
		return l.parseCharRef(startPos)
	}
	name, err := l.readName()
	if err != nil {
		return Token{}, err
	}
	r2, pos2, err2 := l.read()
	if err2 != nil {
		return Token{}, unexpectedEOF(pos2)
	}
	if r2 != ';' {
		return Token{}, newErr(ErrBadName, pos2, "expected ';' to end entity reference")
	}
	return Token{Kind: TokEntityRef, Pos: startPos, Text: name}, nil
}

func (l *Lexer) parseCharRef(startPos Position) (Token, error) {
	hex := false
	if r, _, err := l.peek(); err == nil && r == 'x' {
		hex = true
		l.read()
	}
	var sb strings.Builder
	for {
		r, pos, err := l.peek()
		if err != nil {
			return Token{}, unexpectedEOF(pos)
		}
		if r == ';' {
			l.read()
			break
		}
		if (hex && !isHexDigit(r)) || (!hex && !isDigit(r)) {
			return Token{}, newErr(ErrBadCharRef, pos, "invalid character reference digit %q", r)
		}
		l.read()
		sb.WriteRune(r)
	}
	if sb.Len() == 0 {
		return Token{}, newErr(ErrBadCharRef, startPos, "empty character reference")
	}
	base := 10
	if hex {
		base = 16
	}
	v, err := strconv.ParseInt(sb.String(), base, 32)
	if err != nil {
		return Token{}, newErr(ErrBadCharRef, startPos, "malformed character reference: %v", err)
	}
	if !IsValidCharRefValue(rune(v)) {
		return Token{}, newErr(ErrBadCharRef, startPos, "character reference U+%X is not a valid XML character", v)
	}
	return Token{Kind: TokCharRef, Pos: startPos, CharRefValue: rune(v)}, nil
}

func (l *Lexer) readCharData(startPos Position) (Token, error) {
	var sb strings.Builder
	allWS := true
	for {
		r, _, err := l.peek()
		if err != nil || r == '<' || r == '&' {
			break
		}
		l.read()
		sb.WriteRune(r)
		if !isXMLSpace(r) {
			allWS = false
		}
	}
	return Token{Kind: TokCharData, Pos: startPos, Text: sb.String(), AllWhitespace: allWS}, nil
}

func (l *Lexer) parsePI(startPos Position) (Token, error) {
	target, err := l.readName()
	if err != nil {
		return Token{}, err
	}
	l.skipWhitespace()
	var data strings.Builder
	for {
		r, pos, err := l.read()
		if err != nil {
			if err == io.EOF {
				return Token{}, newErr(ErrUnterminatedConstruct, startPos, "unterminated processing instruction")
			}
			return Token{}, err
		}
		if r == '?' {
			if r2, _, err2 := l.peek(); err2 == nil && r2 == '>' {
				l.read()
				break
			}
		}
		data.WriteRune(r)
		_ = pos
	}
	return Token{Kind: TokProcessingInstruction, Pos: startPos, PITarget: target, PIData: data.String()}, nil
}

func (l *Lexer) parseComment(startPos Position) (Token, error) {
	var sb strings.Builder
	for {
		r, pos, err := l.read()
		if err != nil {
			if err == io.EOF {
				return Token{}, newErr(ErrUnterminatedConstruct, startPos, "unterminated comment")
			}
			return Token{}, err
		}
		sb.WriteRune(r)
		_ = pos
		if strings.HasSuffix(sb.String(), "-->") {
			text := sb.String()
			return Token{Kind: TokComment, Pos: startPos, Text: text[:len(text)-3]}, nil
		}
	}
}

func (l *Lexer) parseCDATA(startPos Position) (Token, error) {
	var sb strings.Builder
	for {
		r, pos, err := l.read()
		if err != nil {
			if err == io.EOF {
				return Token{}, newErr(ErrUnterminatedConstruct, startPos, "unterminated CDATA section")
			}
			return Token{}, err
		}
		sb.WriteRune(r)
		_ = pos
		if strings.HasSuffix(sb.String(), "]]>") {
			text := sb.String()
			return Token{Kind: TokCDataSection, Pos: startPos, Text: text[:len(text)-3]}, nil
		}
	}
}

func (l *Lexer) parseDoctype(startPos Position) (Token, error) {
	l.skipWhitespace()
	name, err := l.readName()
	if err != nil {
		return Token{}, err
	}
	tok := Token{Kind: TokDoctype, Pos: startPos, DoctypeName: name}

	l.skipWhitespace()
	r, pos, err := l.peek()
	if err != nil {
		return Token{}, unexpectedEOF(pos)
	}

	if r == 'S' || r == 'P' {
		kw, err := l.readName()
		if err != nil {
			return Token{}, err
		}
		switch kw {
		case "SYSTEM":
			l.skipWhitespace()
			sysID, err := l.readQuotedLiteral()
			if err != nil {
				return Token{}, err
			}
			tok.DoctypeSystemID = sysID
		case "PUBLIC":
			l.skipWhitespace()
			pubID, err := l.readQuotedLiteral()
			if err != nil {
				return Token{}, err
			}
			l.skipWhitespace()
			sysID, err := l.readQuotedLiteral()
			if err != nil {
				return Token{}, err
			}
			tok.DoctypePublicID = pubID
			tok.DoctypeSystemID = sysID
		default:
			return Token{}, newErr(ErrBadName, pos, "unexpected keyword %q in DOCTYPE", kw)
		}
		l.skipWhitespace()
		r, pos, err = l.peek()
		if err != nil {
			return Token{}, unexpectedEOF(pos)
		}
	}

	if r == '[' {
		l.read()
		subset, err := l.readInternalSubset()
		if err != nil {
			return Token{}, err
		}
		tok.DoctypeInternal = subset
		l.skipWhitespace()
	}

	r, pos, err = l.read()
	if err != nil {
		return Token{}, unexpectedEOF(pos)
	}
	if r != '>' {
		return Token{}, newErr(ErrUnterminatedConstruct, pos, "expected '>' to close DOCTYPE")
	}
	return tok, nil
}

// readInternalSubset scans markup declarations to the next top-level ']',
// opaque to their semantics (SPEC_FULL.md §7.1): it only tracks quoted
// strings so a literal ']' or '>' inside e.g. an <!ENTITY> value doesn't
// terminate the subset early.
func (l *Lexer) readInternalSubset() (string, error) {
	var sb strings.Builder
	var quote rune
	for {
		r, pos, err := l.read()
		if err != nil {
			return "", unexpectedEOF(pos)
		}
		if quote != 0 {
			if r == quote {
				quote = 0
			}
			sb.WriteRune(r)
			continue
		}
		if r == '"' || r == '\'' {
			quote = r
			sb.WriteRune(r)
			continue
		}
		if r == ']' {
			return sb.String(), nil
		}
		sb.WriteRune(r)
	}
}

func (l *Lexer) readQuotedLiteral() (string, error) {
	r, pos, err := l.read()
	if err != nil {
		return "", unexpectedEOF(pos)
	}
	if r != '"' && r != '\'' {
		return "", newErr(ErrBadName, pos, "expected quoted literal")
	}
	quote := r
	var sb strings.Builder
	for {
		r, pos, err := l.read()
		if err != nil {
			return "", unexpectedEOF(pos)
		}
		if r == quote {
			break
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}

func (l *Lexer) nextInTag() (Token, error) {
	l.skipWhitespace()
	r, pos, err := l.peek()
	if err != nil {
		return Token{}, unexpectedEOF(pos)
	}
	switch r {
	case '>':
		l.read()
		l.mode = modeText
		return Token{Kind: TokCloseTag, Pos: pos}, nil
	case '/':
		l.read()
		r2, pos2, err2 := l.read()
		if err2 != nil {
			return Token{}, unexpectedEOF(pos2)
		}
		if r2 != '>' {
			return Token{}, newErr(ErrUnterminatedConstruct, pos2, "expected '>' after '/'")
		}
		l.mode = modeText
		return Token{Kind: TokEmptyElementEnd, Pos: pos}, nil
	case '=':
		l.read()
		return Token{Kind: TokEquals, Pos: pos}, nil
	case '"', '\'':
		return l.parseQuoted(pos)
	default:
		if !isNameStartChar(r) {
			return Token{}, newErr(ErrBadName, pos, "unexpected %q inside tag", r)
		}
		name, err := l.readName()
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokNameOrNmtoken, Pos: pos, Text: name}, nil
	}
}

func (l *Lexer) parseQuoted(startPos Position) (Token, error) {
	quote, _, _ := l.read()
	var sb strings.Builder
	for {
		r, pos, err := l.read()
		if err != nil {
			return Token{}, unexpectedEOF(pos)
		}
		if r == quote {
			break
		}
		if r == '<' {
			return Token{}, newErr(ErrBadName, pos, "'<' is not allowed in an attribute value")
		}
		sb.WriteRune(r)
	}
	return Token{Kind: TokQuoted, Pos: startPos, Delim: byte(quote), Text: sb.String()}, nil
}

func (l *Lexer) readName() (string, error) {
	r, pos, err := l.read()
	if err != nil {
		return "", unexpectedEOF(pos)
	}
	if !isNameStartChar(r) {
		return "", newErr(ErrBadName, pos, "expected name, got %q", r)
	}
	var sb strings.Builder
	sb.WriteRune(r)
	for {
		r, _, err := l.peek()
		if err != nil || !isNameChar(r) {
			break
		}
		l.read()
		sb.WriteRune(r)
	}
	return sb.String(), nil
}

func (l *Lexer) skipWhitespace() {
	for {
		r, _, err := l.peek()
		if err != nil || !isXMLSpace(r) {
			return
		}
		l.read()
	}
}

func isXMLSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isNameStartChar(r rune) bool {
	switch {
	case r == '_' || r == ':':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= 0x80:
		return true
	default:
		return false
	}
}

func isNameChar(r rune) bool {
	if isNameStartChar(r) {
		return true
	}
	switch {
	case r >= '0' && r <= '9':
		return true
	case r == '-' || r == '.':
		return true
	default:
		return false
	}
}
