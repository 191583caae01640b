package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arturoeanton/xmlpull/xmlstream"
)

func TestGetInputReader_ReadsNamedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.xml")
	if err := os.WriteFile(path, []byte(`<root/>`), 0o644); err != nil {
		t.Fatal(err)
	}

	r, rest, err := getInputReader([]string{path, "-pretty"})
	if err != nil {
		t.Fatalf("getInputReader failed: %v", err)
	}
	if len(rest) != 1 || rest[0] != "-pretty" {
		t.Errorf("expected remaining flags after the filename, got %v", rest)
	}
	buf := make([]byte, 7)
	if _, err := r.Read(buf); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(buf) != "<root/>" {
		t.Errorf("got %q", buf)
	}
}

func TestGetInputReader_NoInputIsAnError(t *testing.T) {
	_, _, err := getInputReader(nil)
	if err == nil {
		t.Fatal("expected an error when neither a file nor stdin is provided")
	}
}

func TestSummarize(t *testing.T) {
	cases := []struct {
		ev   xmlstream.Event
		want string
	}{
		{xmlstream.Event{Kind: xmlstream.EventStartElement, Name: xmlstream.QualifiedName{Local: "a"}}, "StartElement <a> (0 attrs, 0 ns)"},
		{xmlstream.Event{Kind: xmlstream.EventEndElement, Name: xmlstream.QualifiedName{Local: "a"}}, "EndElement </a>"},
		{xmlstream.Event{Kind: xmlstream.EventCharacterData, Text: "hi"}, `CharacterData "hi"`},
		{xmlstream.Event{Kind: xmlstream.EventEndDocument}, "EndDocument"},
	}
	for _, c := range cases {
		if got := summarize(c.ev); got != c.want {
			t.Errorf("summarize(%v) = %q, want %q", c.ev.Kind, got, c.want)
		}
	}
}

func TestNewSource_SelectsBlockingByDefault(t *testing.T) {
	r, _, err := getInputReader([]string{writeTempXML(t)})
	if err != nil {
		t.Fatal(err)
	}
	src := newSource(r, false)
	if _, ok := src.(*xmlstream.BlockingSource); !ok {
		t.Errorf("expected a BlockingSource, got %T", src)
	}
}

func writeTempXML(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.xml")
	if err := os.WriteFile(path, []byte(`<root/>`), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
