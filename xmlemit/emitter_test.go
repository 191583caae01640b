package xmlemit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arturoeanton/xmlpull/xmlstream"
)

func TestEmitter_RoundtripsSimpleDocument(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)

	events := []xmlstream.Event{
		{Kind: xmlstream.EventStartDocument, Version: "1.0", Encoding: "UTF-8"},
		{Kind: xmlstream.EventStartElement, Name: xmlstream.QualifiedName{Local: "root"}},
		{Kind: xmlstream.EventCharacterData, Text: "hello"},
		{Kind: xmlstream.EventEndElement, Name: xmlstream.QualifiedName{Local: "root"}},
		{Kind: xmlstream.EventEndDocument},
	}
	for _, ev := range events {
		if err := e.Emit(ev); err != nil {
			t.Fatalf("Emit failed: %v", err)
		}
	}

	want := `<?xml version="1.0" encoding="UTF-8"?><root>hello</root>`
	if buf.String() != want {
		t.Errorf("Mismatch.\nGot:  %s\nWant: %s", buf.String(), want)
	}
}

func TestEmitter_NamespaceBindingsAndAttributes(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)

	name := xmlstream.QualifiedName{Local: "a", Prefix: "p", URI: "urn:p"}
	e.Emit(xmlstream.Event{Kind: xmlstream.EventStartDocument})
	e.Emit(xmlstream.Event{
		Kind: xmlstream.EventStartElement,
		Name: name,
		NamespaceBindings: []xmlstream.NamespaceBinding{{Prefix: "p", URI: "urn:p"}},
		Attributes:        []xmlstream.Attribute{{Name: xmlstream.QualifiedName{Local: "x"}, Value: "1"}},
	})
	e.Emit(xmlstream.Event{Kind: xmlstream.EventEndElement, Name: name})
	e.Emit(xmlstream.Event{Kind: xmlstream.EventEndDocument})

	got := buf.String()
	if !strings.Contains(got, `xmlns:p="urn:p"`) {
		t.Errorf("missing namespace declaration: %s", got)
	}
	if !strings.Contains(got, `x="1"`) {
		t.Errorf("missing attribute: %s", got)
	}
	if !strings.HasSuffix(got, "</p:a>") {
		t.Errorf("expected prefixed end tag, got: %s", got)
	}
}

func TestEmitter_SortedAttributes(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf, WithSortedAttributes())
	e.Emit(xmlstream.Event{Kind: xmlstream.EventStartDocument})
	e.Emit(xmlstream.Event{
		Kind: xmlstream.EventStartElement,
		Name: xmlstream.QualifiedName{Local: "root"},
		Attributes: []xmlstream.Attribute{
			{Name: xmlstream.QualifiedName{Local: "z"}, Value: "1"},
			{Name: xmlstream.QualifiedName{Local: "a"}, Value: "2"},
		},
	})

	got := buf.String()
	if strings.Index(got, `a="2"`) > strings.Index(got, `z="1"`) {
		t.Errorf("expected sorted attribute order, got: %s", got)
	}
}

func TestEmitter_EscapesTextAndAttributes(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)
	e.Emit(xmlstream.Event{Kind: xmlstream.EventStartDocument})
	e.Emit(xmlstream.Event{
		Kind:       xmlstream.EventStartElement,
		Name:       xmlstream.QualifiedName{Local: "root"},
		Attributes: []xmlstream.Attribute{{Name: xmlstream.QualifiedName{Local: "a"}, Value: "x\ty"}},
	})
	e.Emit(xmlstream.Event{Kind: xmlstream.EventCharacterData, Text: "a < b & c"})
	e.Emit(xmlstream.Event{Kind: xmlstream.EventEndElement, Name: xmlstream.QualifiedName{Local: "root"}})

	got := buf.String()
	if !strings.Contains(got, "a &lt; b &amp; c") {
		t.Errorf("text not escaped: %s", got)
	}
	if !strings.Contains(got, `a="x&#x9;y"`) {
		t.Errorf("attribute tab not normalized: %s", got)
	}
}

func TestEmitter_LatchesErrorAfterFailedWrite(t *testing.T) {
	e := NewEmitter(failingWriter{})
	err1 := e.Emit(xmlstream.Event{Kind: xmlstream.EventStartElement, Name: xmlstream.QualifiedName{Local: "a"}})
	if err1 == nil {
		t.Fatal("expected a write error")
	}
	err2 := e.Emit(xmlstream.Event{Kind: xmlstream.EventEndElement, Name: xmlstream.QualifiedName{Local: "a"}})
	if err2 != err1 {
		t.Errorf("expected the same latched error, got %v then %v", err1, err2)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, bytes.ErrTooLarge
}

func TestEmitter_CDataSection(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)
	e.Emit(xmlstream.Event{Kind: xmlstream.EventCData, Text: "<raw>"})
	if buf.String() != "<![CDATA[<raw>]]>" {
		t.Errorf("got %q", buf.String())
	}
}

func TestEmitter_Doctype(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)
	e.Emit(xmlstream.Event{Kind: xmlstream.EventDoctypeDeclaration, DoctypeName: "root", DoctypeInternal: `<!ENTITY x "y">`})
	want := `<!DOCTYPE root [<!ENTITY x "y">]>`
	if buf.String() != want {
		t.Errorf("got %q want %q", buf.String(), want)
	}
}
