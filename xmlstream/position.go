package xmlstream

import "fmt"

// Position locates a point in the input, per spec.md §3 "Source
// position". It is attached to every error and to every event as the
// position of that event's opening delimiter.
type Position struct {
	// 0-based byte offset into the decoded UTF-8 text after any BOM; for
	// UTF-8 input without a BOM this is the offset in the original bytes.
	Offset int
	Line   int // 1-based
	Column int // 1-based
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d (offset %d)", p.Line, p.Column, p.Offset)
}
