package extraction

import (
	"testing"
	"time"
)

// anchor builds an inline text anchor, the common case in tests.
func anchor(s string) *TextAnchor {
	return &TextAnchor{Content: s}
}

// cellRow builds a table row of inline cells.
func cellRow(texts ...string) TableRow {
	row := TableRow{}
	for _, t := range texts {
		row.Cells = append(row.Cells, Cell{Anchor: anchor(t)})
	}
	return row
}

// testExtractor returns an extractor pinned to a fixed clock.
func testExtractor(now time.Time) *Extractor {
	return &Extractor{now: func() time.Time { return now }}
}

func TestResolveAnchor(t *testing.T) {
	doc := &AnnotatedDocument{Text: "Chase Bank Statement 2023"}

	tests := []struct {
		name   string
		doc    *AnnotatedDocument
		anchor *TextAnchor
		want   string
	}{
		{
			name:   "nil anchor",
			doc:    doc,
			anchor: nil,
			want:   "",
		},
		{
			name:   "inline content returned verbatim",
			doc:    doc,
			anchor: &TextAnchor{Content: "  Acme LLC  "},
			want:   "  Acme LLC  ",
		},
		{
			name:   "single segment",
			doc:    doc,
			anchor: &TextAnchor{Segments: []TextSegment{{Start: 0, End: 5}}},
			want:   "Chase",
		},
		{
			name: "segments joined with single space",
			doc:  doc,
			anchor: &TextAnchor{Segments: []TextSegment{
				{Start: 0, End: 5},
				{Start: 6, End: 10},
			}},
			want: "Chase Bank",
		},
		{
			name: "out of range segments skipped",
			doc:  doc,
			anchor: &TextAnchor{Segments: []TextSegment{
				{Start: -1, End: 5},
				{Start: 0, End: 5},
				{Start: 21, End: 100},
				{Start: 10, End: 6},
			}},
			want: "Chase",
		},
		{
			name:   "segments without document text",
			doc:    &AnnotatedDocument{},
			anchor: &TextAnchor{Segments: []TextSegment{{Start: 0, End: 5}}},
			want:   "",
		},
		{
			name:   "nil document",
			doc:    nil,
			anchor: &TextAnchor{Segments: []TextSegment{{Start: 0, End: 5}}},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveAnchor(tt.doc, tt.anchor)
			if got != tt.want {
				t.Errorf("ResolveAnchor() = %q, want %q", got, tt.want)
			}
		})
	}
}
