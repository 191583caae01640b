// Package xmlemit is the out-of-core companion collaborator named in
// spec.md §1/§6: it serializes the xmlstream.Event vocabulary back to
// well-formed XML, writing directly to an io.Writer the way teacher's
// Encoder does (xml/streaming_encoder.go) rather than building an
// in-memory tree first.
package xmlemit

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/arturoeanton/xmlpull/xmlstream"
)

// Config configures an Emitter, following teacher's functional-options
// shape (xml/xml.go's config/Option).
type Config struct {
	SortedAttributes bool
	PrettyPrint      bool
	IndentString     string
}

// Option configures a Config.
type Option func(*Config)

func defaultConfig() *Config {
	return &Config{IndentString: "  "}
}

// WithSortedAttributes renders each StartElement's attributes in
// alphabetical order by qualified name, grounded on teacher's
// C14N-flavored attribute sort (xml/c14n.go: "sort.Strings(attrs) // <--
// LA MAGIA: Orden Alfabético").
func WithSortedAttributes() Option {
	return func(c *Config) { c.SortedAttributes = true }
}

// Emitter writes an xmlstream.Event sequence to w as XML text. It keeps
// just enough state to know whether the document element is still open;
// well-formedness of the event sequence itself is the caller's
// responsibility (normally: whatever a xmlstream.Parser produced).
type Emitter struct {
	w     io.Writer
	cfg   *Config
	depth int
	err   error
}

// NewEmitter wraps w, ready to receive events via Emit.
func NewEmitter(w io.Writer, opts ...Option) *Emitter {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Emitter{w: w, cfg: cfg}
}

// Emit writes one event. Once a write fails, every subsequent Emit call
// is a no-op returning that same error -- mirroring the latched-error
// contract xmlstream.Parser uses on the read side.
func (e *Emitter) Emit(ev xmlstream.Event) error {
	if e.err != nil {
		return e.err
	}
	switch ev.Kind {
	case xmlstream.EventStartDocument:
		e.err = e.writeStartDocument(ev)
	case xmlstream.EventEndDocument:
		// Nothing to flush: every write goes straight to w.
	case xmlstream.EventProcessingInstruction:
		e.writeIndent()
		_, e.err = fmt.Fprintf(e.w, "<?%s %s?>", ev.PITarget, ev.PIData)
	case xmlstream.EventDoctypeDeclaration:
		e.writeIndent()
		e.err = e.writeDoctype(ev)
	case xmlstream.EventComment:
		e.writeIndent()
		_, e.err = fmt.Fprintf(e.w, "<!--%s-->", ev.Text)
	case xmlstream.EventStartElement:
		e.writeIndent()
		e.err = e.writeStartElement(ev)
		e.depth++
	case xmlstream.EventEndElement:
		e.depth--
		e.writeIndent()
		_, e.err = fmt.Fprintf(e.w, "</%s>", ev.Name.String())
	case xmlstream.EventCharacterData:
		_, e.err = io.WriteString(e.w, escapeText(ev.Text))
	case xmlstream.EventCData:
		_, e.err = fmt.Fprintf(e.w, "<![CDATA[%s]]>", ev.Text)
	}
	return e.err
}

func (e *Emitter) writeStartDocument(ev xmlstream.Event) error {
	version := ev.Version
	if version == "" {
		version = "1.0"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="%s"`, version)
	if ev.Encoding != "" {
		fmt.Fprintf(&sb, ` encoding="%s"`, ev.Encoding)
	}
	switch ev.Standalone {
	case xmlstream.StandaloneYes:
		sb.WriteString(` standalone="yes"`)
	case xmlstream.StandaloneNo:
		sb.WriteString(` standalone="no"`)
	}
	sb.WriteString("?>")
	_, err := io.WriteString(e.w, sb.String())
	return err
}

func (e *Emitter) writeDoctype(ev xmlstream.Event) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<!DOCTYPE %s", ev.DoctypeName)
	switch {
	case ev.DoctypePublicID != "":
		fmt.Fprintf(&sb, ` PUBLIC "%s" "%s"`, ev.DoctypePublicID, ev.DoctypeSystemID)
	case ev.DoctypeSystemID != "":
		fmt.Fprintf(&sb, ` SYSTEM "%s"`, ev.DoctypeSystemID)
	}
	if ev.DoctypeInternal != "" {
		fmt.Fprintf(&sb, " [%s]", ev.DoctypeInternal)
	}
	sb.WriteString(">")
	_, err := io.WriteString(e.w, sb.String())
	return err
}

func (e *Emitter) writeStartElement(ev xmlstream.Event) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<%s", ev.Name.String())

	for _, ns := range ev.NamespaceBindings {
		if ns.Prefix == "" {
			fmt.Fprintf(&sb, ` xmlns="%s"`, escapeAttr(ns.URI))
		} else {
			fmt.Fprintf(&sb, ` xmlns:%s="%s"`, ns.Prefix, escapeAttr(ns.URI))
		}
	}

	attrs := ev.Attributes
	if e.cfg.SortedAttributes {
		attrs = append([]xmlstream.Attribute(nil), attrs...)
		sort.Slice(attrs, func(i, j int) bool {
			return attrs[i].Name.String() < attrs[j].Name.String()
		})
	}
	for _, a := range attrs {
		fmt.Fprintf(&sb, ` %s="%s"`, a.Name.String(), escapeAttr(a.Value))
	}
	sb.WriteString(">")
	_, err := io.WriteString(e.w, sb.String())
	return err
}

func (e *Emitter) writeIndent() {
	if !e.cfg.PrettyPrint {
		return
	}
	io.WriteString(e.w, "\n"+strings.Repeat(e.cfg.IndentString, e.depth))
}

// escapeText/escapeAttr mirror teacher's minimal hand-rolled escaping
// (xml/c14n.go's escapeText/escapeAttr), routed through
// encoding/xml.EscapeText for the common case the way teacher's
// streaming_encoder.go does, with the same CR/tab/newline attribute
// normalization c14n.go adds on top.
func escapeText(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

func escapeAttr(s string) string {
	s = escapeText(s)
	s = strings.ReplaceAll(s, "\n", "&#xA;")
	s = strings.ReplaceAll(s, "\t", "&#x9;")
	s = strings.ReplaceAll(s, "\r", "&#xD;")
	return s
}
