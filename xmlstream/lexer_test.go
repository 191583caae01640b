package xmlstream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLexer(t *testing.T, xml string) *Lexer {
	t.Helper()
	dec, err := NewDecoder(NewBlockingSource(strings.NewReader(xml)), DecoderOptions{})
	require.NoError(t, err)
	return NewLexer(dec)
}

func collectTokens(t *testing.T, xml string) []Token {
	t.Helper()
	l := newLexer(t, xml)
	var toks []Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == TokEOF {
			return toks
		}
	}
}

func TestLexer_StartTagWithAttributes(t *testing.T) {
	toks := collectTokens(t, `<book id="1" lang='en'>`)
	kinds := make([]TokenKind, len(toks))
	for i, tk := range toks {
		kinds[i] = tk.Kind
	}
	assert.Equal(t, []TokenKind{
		TokOpenTagStart, TokNameOrNmtoken, TokNameOrNmtoken, TokEquals, TokQuoted,
		TokNameOrNmtoken, TokEquals, TokQuoted, TokCloseTag, TokEOF,
	}, kinds)
	assert.Equal(t, "book", toks[1].Text)
	assert.Equal(t, "id", toks[2].Text)
	assert.Equal(t, "1", toks[4].Text)
	assert.Equal(t, byte('"'), toks[4].Delim)
	assert.Equal(t, "lang", toks[5].Text)
	assert.Equal(t, "en", toks[7].Text)
	assert.Equal(t, byte('\''), toks[7].Delim)
}

func TestLexer_EndTag(t *testing.T) {
	toks := collectTokens(t, `</book>`)
	require.Len(t, toks, 4)
	assert.Equal(t, TokEndTagStart, toks[0].Kind)
	assert.Equal(t, TokNameOrNmtoken, toks[1].Kind)
	assert.Equal(t, "book", toks[1].Text)
	assert.Equal(t, TokCloseTag, toks[2].Kind)
	assert.Equal(t, TokEOF, toks[3].Kind)
}

func TestLexer_EmptyElementEnd(t *testing.T) {
	toks := collectTokens(t, `<br/>`)
	require.Len(t, toks, 4)
	assert.Equal(t, TokOpenTagStart, toks[0].Kind)
	assert.Equal(t, TokNameOrNmtoken, toks[1].Kind)
	assert.Equal(t, TokEmptyElementEnd, toks[2].Kind)
}

func TestLexer_CharDataAndEntityAndCharRef(t *testing.T) {
	toks := collectTokens(t, `a&amp;b&#65;c`)
	var kinds []TokenKind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	assert.Equal(t, []TokenKind{
		TokCharData, TokEntityRef, TokCharData, TokCharRef, TokCharData, TokEOF,
	}, kinds)
	assert.Equal(t, "a", toks[0].Text)
	assert.Equal(t, "amp", toks[1].Text)
	assert.Equal(t, "b", toks[2].Text)
	assert.Equal(t, rune('A'), toks[3].CharRefValue)
	assert.Equal(t, "c", toks[4].Text)
}

func TestLexer_CharDataAllWhitespaceFlag(t *testing.T) {
	toks := collectTokens(t, "  \t\n  ")
	require.Len(t, toks, 2)
	assert.True(t, toks[0].AllWhitespace)
}

func TestLexer_Comment(t *testing.T) {
	toks := collectTokens(t, `<!-- hello -->`)
	require.Len(t, toks, 2)
	assert.Equal(t, TokComment, toks[0].Kind)
	assert.Equal(t, " hello ", toks[0].Text)
}

func TestLexer_CDataSection(t *testing.T) {
	toks := collectTokens(t, `<![CDATA[<a>&not-an-entity</a>]]>`)
	require.Len(t, toks, 2)
	assert.Equal(t, TokCDataSection, toks[0].Kind)
	assert.Equal(t, "<a>&not-an-entity</a>", toks[0].Text)
}

func TestLexer_ProcessingInstruction(t *testing.T) {
	toks := collectTokens(t, `<?xml version="1.0" encoding="UTF-8"?>`)
	require.Len(t, toks, 2)
	assert.Equal(t, TokProcessingInstruction, toks[0].Kind)
	assert.Equal(t, "xml", toks[0].PITarget)
	assert.Equal(t, `version="1.0" encoding="UTF-8"`, toks[0].PIData)
}

func TestLexer_DoctypeWithInternalSubset(t *testing.T) {
	toks := collectTokens(t, `<!DOCTYPE root SYSTEM "root.dtd" [<!ENTITY x "y">]>`)
	require.Len(t, toks, 2)
	tok := toks[0]
	assert.Equal(t, TokDoctype, tok.Kind)
	assert.Equal(t, "root", tok.DoctypeName)
	assert.Equal(t, "root.dtd", tok.DoctypeSystemID)
	assert.Contains(t, tok.DoctypeInternal, `<!ENTITY x "y">`)
}

func TestLexer_DoctypePublicAndSystem(t *testing.T) {
	toks := collectTokens(t, `<!DOCTYPE root PUBLIC "-//X//DTD X//EN" "x.dtd">`)
	require.Len(t, toks, 2)
	tok := toks[0]
	assert.Equal(t, "-//X//DTD X//EN", tok.DoctypePublicID)
	assert.Equal(t, "x.dtd", tok.DoctypeSystemID)
}

func TestLexer_LessThanInAttributeValueIsAnError(t *testing.T) {
	l := newLexer(t, `<a b="<"`)
	_, err := l.Next() // TokOpenTagStart
	require.NoError(t, err)
	_, err = l.Next() // TokNameOrNmtoken "a"
	require.NoError(t, err)
	_, err = l.Next() // TokNameOrNmtoken "b"
	require.NoError(t, err)
	_, err = l.Next() // TokEquals
	require.NoError(t, err)
	_, err = l.Next() // quoted value containing '<'
	require.Error(t, err)
	xerr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrBadName, xerr.Kind)
}

func TestLexer_UnterminatedCommentIsAnError(t *testing.T) {
	l := newLexer(t, `<!-- never closed`)
	_, err := l.Next()
	require.Error(t, err)
}
