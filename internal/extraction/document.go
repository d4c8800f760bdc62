package extraction

import (
	"strings"
)

// AnnotatedDocument is the structured output of the upstream document
// annotation service: the document's full text plus the form fields, entities
// and page tables detected in it. It is read-only input to the extraction
// engine; no extraction step mutates it.
type AnnotatedDocument struct {
	// Text is the full raw text of the document. Segment-based text anchors
	// index into it.
	Text string

	// FormFields maps a detected field name to its value reference.
	FormFields map[string]FormField

	// Entities are the typed pieces of semantic information found in the
	// document, in detection order.
	Entities []Entity

	// Pages holds the detected tables, in page order.
	Pages []Page
}

// FormField is a named field detected on the document. Its value is either a
// text anchor into the document or a literal string; Anchor wins when set.
type FormField struct {
	Name   string
	Anchor *TextAnchor
	Value  string
}

// Entity is a typed, possibly nested, piece of extracted information. A
// daily-balance entity, for example, carries date and amount sub-entities in
// Properties.
type Entity struct {
	Type        string
	MentionText string
	Anchor      *TextAnchor
	Properties  []Entity
}

// TextAnchor references document text either as inline content or as a list
// of byte-offset segments into AnnotatedDocument.Text. Inline content takes
// precedence when present.
type TextAnchor struct {
	Content  string
	Segments []TextSegment
}

// TextSegment is a half-open [Start, End) byte range into the document text.
type TextSegment struct {
	Start int
	End   int
}

// Page holds the tables detected on a single page.
type Page struct {
	Tables []Table
}

// Table is a header/body row structure detected on a page. A table without
// header rows yields no classified section or columns, but its body rows are
// still visited.
type Table struct {
	HeaderRows []TableRow
	BodyRows   []TableRow
}

// TableRow is an ordered sequence of cells.
type TableRow struct {
	Cells []Cell
}

// Cell references its content through a text anchor.
type Cell struct {
	Anchor *TextAnchor
}

// ResolveAnchor resolves a text anchor to a literal string. Inline content is
// returned verbatim; otherwise each segment is sliced from the document text
// and the resolved pieces are joined with a single space. Malformed or
// out-of-range segments are skipped so that partial results are preferred
// over failure. A nil anchor or missing document text resolves to "".
func ResolveAnchor(doc *AnnotatedDocument, anchor *TextAnchor) string {
	if anchor == nil {
		return ""
	}
	if anchor.Content != "" {
		return anchor.Content
	}
	if doc == nil || doc.Text == "" {
		return ""
	}

	var parts []string
	for _, seg := range anchor.Segments {
		if seg.Start < 0 || seg.End > len(doc.Text) || seg.Start > seg.End {
			continue
		}
		parts = append(parts, doc.Text[seg.Start:seg.End])
	}
	return strings.Join(parts, " ")
}
