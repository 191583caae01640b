package xmlstream

// TokenKind classifies a lexical token, per spec.md §4.C.
type TokenKind int

const (
	TokOpenTagStart TokenKind = iota // '<' immediately followed by a name: start of a start-tag
	TokEndTagStart                   // '</'
	TokCloseTag                      // '>'
	TokEmptyElementEnd                // '/>'
	TokEquals                        // '='
	TokNameOrNmtoken
	TokQuoted
	TokEntityRef
	TokCharRef
	TokCharData
	TokWhitespace
	TokProcessingInstruction
	TokComment
	TokCDataSection
	TokDoctype
	TokEOF
)

// Token is one lexical unit, carrying the position of its first character
// (spec.md §4.C). Fields are populated per Kind; irrelevant fields are zero.
type Token struct {
	Kind TokenKind
	Pos  Position

	// TokNameOrNmtoken, TokEntityRef: the bare name.
	// TokCharData, TokWhitespace, TokComment, TokCDataSection: the text run.
	Text string

	// TokQuoted: the quote delimiter used ('"' or '\'') and the raw,
	// un-normalized value between the quotes.
	Delim byte

	// TokCharRef: the decoded code point.
	CharRefValue rune

	// TokCharData, TokWhitespace: true if the run contains only XML
	// whitespace (#x20, #x9, #xA, #xD-normalized-to-#xA).
	AllWhitespace bool

	// TokProcessingInstruction.
	PITarget string
	PIData   string

	// TokDoctype.
	DoctypeName     string
	DoctypePublicID string
	DoctypeSystemID string
	DoctypeInternal string // raw internal-subset text, opaque per SPEC_FULL.md §7.1
}
