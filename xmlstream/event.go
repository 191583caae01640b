package xmlstream

// QualifiedName is the {local, prefix?, namespace_uri?} triple of spec.md
// §3. Two names compare equal (via Equal) when their (namespace_uri, local)
// pair matches; Prefix is purely lexical.
type QualifiedName struct {
	Local string
	Prefix string // "" if unqualified
	URI    string // "" until resolved against the namespace stack
}

// Equal implements spec.md §3's name-equality rule: prefix is ignored.
func (q QualifiedName) Equal(o QualifiedName) bool {
	return q.Local == o.Local && q.URI == o.URI
}

// String renders prefix:local (or just local) for diagnostics.
func (q QualifiedName) String() string {
	if q.Prefix == "" {
		return q.Local
	}
	return q.Prefix + ":" + q.Local
}

// Attribute is {name, value} per spec.md §3.
type Attribute struct {
	Name  QualifiedName
	Value string
}

// NamespaceBinding is {prefix?, uri} per spec.md §3. Prefix=="" is the
// default namespace; URI=="" means "undeclare".
type NamespaceBinding struct {
	Prefix string
	URI    string
}

// EventKind discriminates the Event tagged variant of spec.md §3.
type EventKind int

const (
	EventStartDocument EventKind = iota
	EventEndDocument
	EventProcessingInstruction
	EventDoctypeDeclaration
	EventComment
	EventStartElement
	EventEndElement
	EventCharacterData
	EventCData
)

func (k EventKind) String() string {
	switch k {
	case EventStartDocument:
		return "StartDocument"
	case EventEndDocument:
		return "EndDocument"
	case EventProcessingInstruction:
		return "ProcessingInstruction"
	case EventDoctypeDeclaration:
		return "DoctypeDeclaration"
	case EventComment:
		return "Comment"
	case EventStartElement:
		return "StartElement"
	case EventEndElement:
		return "EndElement"
	case EventCharacterData:
		return "CharacterData"
	case EventCData:
		return "CData"
	default:
		return "Unknown"
	}
}

// StandaloneValue is the tri-state `standalone` flag on StartDocument.
type StandaloneValue int

const (
	StandaloneUnspecified StandaloneValue = iota
	StandaloneYes
	StandaloneNo
)

// Event is the single tagged-variant type the parser yields from Next,
// per spec.md §3/§6. Only the fields relevant to Kind are populated.
//
// Grounded on the tagged-token-interface shape of
// other_examples/bored-engineer-fastxml (distinct StartElement/EndElement/
// CDATA/Comment/ProcInst/Directive types satisfying one Token interface);
// here a single struct with a Kind discriminant is used instead of an
// interface, matching spec.md §3's "tagged variant" description directly
// and avoiding a type-switch at every call site.
type Event struct {
	Kind EventKind
	Pos  Position

	// EventStartDocument
	Version    string
	Encoding   string
	Standalone StandaloneValue

	// EventProcessingInstruction
	PITarget string
	PIData   string

	// EventDoctypeDeclaration
	DoctypeName     string
	DoctypePublicID string
	DoctypeSystemID string
	DoctypeInternal string

	// EventComment, EventCharacterData, EventCData
	Text          string
	WhitespaceOnly bool

	// EventStartElement, EventEndElement
	Name             QualifiedName
	Attributes       []Attribute
	NamespaceBindings []NamespaceBinding
}
