// Package resfile implements read-only extraction of translatable string
// entries from XML resource files.
//
// The element/attribute convention marking an entry as translatable is
// project-specific, so it is captured in a Rule instead of being hardcoded.
// The default Rule matches the common Android-style convention:
//
//	<resources>
//	    <string name="greeting">Hello <x id="1"/>!</string>
//	    <string name="build_id" translatable="false">1337</string>
//	</resources>
//
// Inline child elements (placeholder markup such as <x id="1"/>) are
// reconstructed verbatim into the entry text so they survive the trip
// through the CSV manifest and back.
package resfile

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Rule is the configurable convention locating translatable entries.
type Rule struct {
	// Element is the local name of a translatable string element.
	Element string
	// KeyAttr is the attribute on Element carrying the string key.
	KeyAttr string
	// SkipAttr names an attribute that, when set to "false", excludes the
	// entry from extraction. Empty disables the check.
	SkipAttr string
}

// DefaultRule matches <string name="…"> with translatable="false" opt-out.
func DefaultRule() Rule {
	return Rule{Element: "string", KeyAttr: "name", SkipAttr: "translatable"}
}

// Entry is one translatable string: its key and its source text.
type Entry struct {
	Key  string
	Text string
}

// File is the parsed result for a single resource file.
type File struct {
	// Path is the file the entries were read from.
	Path string
	// Entries in document order.
	Entries []Entry
}

// ParseError reports malformed XML in a resource file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DuplicateKeyError reports two entries sharing a key within one file.
type DuplicateKeyError struct {
	Path string
	Key  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s: duplicate key %q", e.Path, e.Key)
}

// ParseFile reads and parses one XML resource file.
func ParseFile(path string, rule Rule) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data, rule)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	f.Path = path

	seen := make(map[string]bool, len(f.Entries))
	for _, e := range f.Entries {
		if seen[e.Key] {
			return nil, &DuplicateKeyError{Path: path, Key: e.Key}
		}
		seen[e.Key] = true
	}
	return f, nil
}

// Parse parses XML resource data using the given extraction rule.
func Parse(data []byte, rule Rule) (*File, error) {
	f := &File{}
	dec := xml.NewDecoder(strings.NewReader(string(data)))

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != rule.Element {
			continue
		}

		key, skip := parseAttrs(start, rule)
		var inner strings.Builder
		if err := readElementContent(dec, &inner); err != nil {
			return nil, &ParseError{Err: fmt.Errorf("reading <%s %s=%q>: %w", rule.Element, rule.KeyAttr, key, err)}
		}
		if skip || key == "" {
			continue
		}
		f.Entries = append(f.Entries, Entry{Key: key, Text: inner.String()})
	}

	return f, nil
}

// parseAttrs extracts the key and the skip flag from a start element.
func parseAttrs(elem xml.StartElement, rule Rule) (key string, skip bool) {
	for _, attr := range elem.Attr {
		switch attr.Name.Local {
		case rule.KeyAttr:
			key = attr.Value
		case rule.SkipAttr:
			if rule.SkipAttr != "" && strings.EqualFold(attr.Value, "false") {
				skip = true
			}
		}
	}
	return
}

// readElementContent reads the full inner content of an element until its
// matching close tag, reconstructing inline child elements (placeholder
// markup like <x id="1"/>) as raw text. Go's decoder expands self-closing
// tags into start/end token pairs, so an opened tag is held back until the
// next token decides whether it closes empty (emitted as <x/>) or not.
func readElementContent(dec *xml.Decoder, b *strings.Builder) error {
	depth := 1
	var pending *xml.StartElement

	flush := func(selfClose bool) {
		if pending == nil {
			return
		}
		b.WriteString("<")
		writeName(b, pending.Name)
		for _, attr := range pending.Attr {
			fmt.Fprintf(b, ` %s="%s"`, attr.Name.Local, attr.Value)
		}
		if selfClose {
			b.WriteString("/>")
		} else {
			b.WriteString(">")
		}
		pending = nil
	}

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			flush(false)
			b.WriteString(string(t))
		case xml.Comment, xml.ProcInst:
			// skip
		case xml.Directive:
			flush(false)
			// CDATA sections surface as directives in Go's decoder.
			s := string(t)
			if strings.HasPrefix(s, "[CDATA[") && strings.HasSuffix(s, "]]") {
				b.WriteString(s[7 : len(s)-2])
			}
		case xml.StartElement:
			flush(false)
			depth++
			c := t.Copy()
			pending = &c
		case xml.EndElement:
			depth--
			if pending != nil {
				flush(true)
			} else if depth > 0 {
				b.WriteString("</")
				writeName(b, t.Name)
				b.WriteString(">")
			}
		}
	}
	return nil
}

func writeName(b *strings.Builder, name xml.Name) {
	if name.Space != "" {
		b.WriteString(name.Space)
		b.WriteString(":")
	}
	b.WriteString(name.Local)
}
