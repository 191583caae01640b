// Command xmlpull is the example CLI collaborator spec.md §6 names: it
// selects between the two xmlstream.ByteSource shapes and constructs a
// xmlstream.Config, but none of its own logic is part of the core.
//
// Grounded on teacher's getInputReader + table-driven Cli* dispatch
// (xml/cli.go): stdin-or-file resolution and a flat command switch in main.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/repr"
	"golang.org/x/net/html/charset"

	"github.com/arturoeanton/xmlpull/xmlemit"
	"github.com/arturoeanton/xmlpull/xmlstream"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(0)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "events":
		cliEvents(args)
	case "roundtrip":
		cliRoundtrip(args)
	case "sniff":
		cliSniff(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("xmlpull - streaming XML 1.0 pull parser CLI")
	fmt.Println("usage: xmlpull <command> [flags] [file]")
	fmt.Println()
	fmt.Println("commands:")
	fmt.Println("  events    [-coroutine] [-debug] <file>  : print the event stream")
	fmt.Println("  roundtrip [-pretty] [-sorted-attrs] <file> : parse then re-emit")
	fmt.Println("  sniff     <file>                        : compare encoding sniffers")
}

// getInputReader resolves args to a Reader: a file path, or stdin when
// input is piped in, matching teacher's xml/cli.go getInputReader.
func getInputReader(args []string) (io.Reader, []string, error) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, args, err
		}
		return f, args[1:], nil
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		return os.Stdin, args, nil
	}
	return nil, args, fmt.Errorf("no input provided (pipe or file)")
}

func die(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// newSource builds either shape of xmlstream.ByteSource spec.md §4.A/§5
// describes, selected by -coroutine.
func newSource(r io.Reader, coroutine bool) xmlstream.ByteSource {
	if coroutine {
		return xmlstream.NewCoroutineSource(context.Background(), r)
	}
	return xmlstream.NewBlockingSource(r)
}

func cliEvents(args []string) {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	coroutine := fs.Bool("coroutine", false, "drive the parser over a CoroutineSource instead of a BlockingSource")
	debug := fs.Bool("debug", false, "pretty-print each event with repr instead of a one-line summary")
	fs.Parse(args)

	r, rest, err := getInputReader(fs.Args())
	if err != nil {
		die(err)
	}
	_ = rest

	src := newSource(r, *coroutine)
	p, err := xmlstream.NewParser(src, nil)
	if err != nil {
		die(err)
	}

	for {
		ev, err := p.Next()
		if err != nil {
			die(err)
		}
		if *debug {
			repr.Println(ev)
		} else {
			fmt.Println(summarize(ev))
		}
		if ev.Kind == xmlstream.EventEndDocument {
			break
		}
	}
}

func summarize(ev xmlstream.Event) string {
	switch ev.Kind {
	case xmlstream.EventStartElement:
		return fmt.Sprintf("%s <%s> (%d attrs, %d ns)", ev.Kind, ev.Name, len(ev.Attributes), len(ev.NamespaceBindings))
	case xmlstream.EventEndElement:
		return fmt.Sprintf("%s </%s>", ev.Kind, ev.Name)
	case xmlstream.EventCharacterData, xmlstream.EventCData, xmlstream.EventComment:
		return fmt.Sprintf("%s %q", ev.Kind, ev.Text)
	default:
		return ev.Kind.String()
	}
}

// cliRoundtrip demonstrates spec.md §8's round-trip law end to end: parse
// with xmlstream, re-serialize with xmlemit. Grounded on teacher's
// CliFormat (xml/cli.go).
func cliRoundtrip(args []string) {
	fs := flag.NewFlagSet("roundtrip", flag.ExitOnError)
	pretty := fs.Bool("pretty", false, "indent the re-emitted output")
	sorted := fs.Bool("sorted-attrs", false, "sort each element's attributes alphabetically on re-emit")
	fs.Parse(args)

	r, _, err := getInputReader(fs.Args())
	if err != nil {
		die(err)
	}

	p, err := xmlstream.NewParser(xmlstream.NewBlockingSource(r), nil)
	if err != nil {
		die(err)
	}

	var emitOpts []xmlemit.Option
	if *pretty {
		emitOpts = append(emitOpts, xmlemit.WithPrettyPrint())
	}
	if *sorted {
		emitOpts = append(emitOpts, xmlemit.WithSortedAttributes())
	}
	emitter := xmlemit.NewEmitter(os.Stdout, emitOpts...)

	for {
		ev, err := p.Next()
		if err != nil {
			die(err)
		}
		if err := emitter.Emit(ev); err != nil {
			die(err)
		}
		if ev.Kind == xmlstream.EventEndDocument {
			break
		}
	}
	fmt.Println()
}

// cliSniff reports what golang.org/x/net/html/charset independently guesses
// for the input's encoding, next to xmlstream's own BOM/<?xml?> sniff, as a
// diagnostic for operators debugging InvalidEncoding reports. Never wired
// into xmlstream itself -- the core's own sniff is the sole authority per
// spec.md §4.B.
func cliSniff(args []string) {
	r, _, err := getInputReader(args)
	if err != nil {
		die(err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		die(err)
	}

	dec, err := xmlstream.NewDecoder(xmlstream.NewBlockingSource(strings.NewReader(string(data))), xmlstream.DecoderOptions{AllowLegacyCharsets: true})
	if err != nil {
		die(err)
	}
	fmt.Printf("xmlstream sniff:       %s\n", dec.Encoding())

	_, name, _ := charset.DetermineEncoding(data, "")
	fmt.Printf("x/net/html/charset sniff: %s\n", name)
}
