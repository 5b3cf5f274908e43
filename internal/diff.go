package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DocumentDiff is a line diff between two export documents.
type DocumentDiff struct {
	Added   int
	Removed int
	Lines   []DiffLine
}

type DiffLine struct {
	Op   diffmatchpatch.Operation
	Text string
}

func (d *DocumentDiff) Empty() bool {
	return d.Added == 0 && d.Removed == 0
}

// String renders changed lines only, prefixed with + or -.
func (d *DocumentDiff) String() string {
	var sb strings.Builder
	for _, l := range d.Lines {
		switch l.Op {
		case diffmatchpatch.DiffInsert:
			fmt.Fprintf(&sb, "+%s\n", l.Text)
		case diffmatchpatch.DiffDelete:
			fmt.Fprintf(&sb, "-%s\n", l.Text)
		}
	}
	return sb.String()
}

// DiffDocuments compares two export documents after normalising their
// formatting. The export timestamp is ignored.
func DiffDocuments(before, after []byte) (*DocumentDiff, error) {
	a, err := canonicalDocument(before)
	if err != nil {
		return nil, fmt.Errorf("before: %w", err)
	}
	b, err := canonicalDocument(after)
	if err != nil {
		return nil, fmt.Errorf("after: %w", err)
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	out := &DocumentDiff{}
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.Lines = append(out.Lines, DiffLine{Op: d.Type, Text: strings.TrimSuffix(line, "\n")})
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				out.Added++
			case diffmatchpatch.DiffDelete:
				out.Removed++
			}
		}
	}
	return out, nil
}

func canonicalDocument(data []byte) (string, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	delete(doc, "exportDate")

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
