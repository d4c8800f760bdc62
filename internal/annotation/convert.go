package annotation

import (
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/dvloznov/docai-extract/internal/extraction"
)

// convertDocument maps a Document AI response document onto the extraction
// engine's model. Form fields are collected from every page and keyed by
// their resolved field-name text with any trailing colon removed.
func convertDocument(doc *documentaipb.Document) *extraction.AnnotatedDocument {
	out := &extraction.AnnotatedDocument{
		FormFields: map[string]extraction.FormField{},
	}
	if doc == nil {
		return out
	}
	out.Text = doc.GetText()

	for _, page := range doc.GetPages() {
		p := extraction.Page{}
		for _, table := range page.GetTables() {
			p.Tables = append(p.Tables, convertTable(table))
		}
		out.Pages = append(out.Pages, p)

		for _, ff := range page.GetFormFields() {
			nameAnchor := convertAnchor(ff.GetFieldName().GetTextAnchor())
			name := strings.TrimSpace(extraction.ResolveAnchor(out, nameAnchor))
			name = strings.TrimSpace(strings.TrimSuffix(name, ":"))
			if name == "" {
				continue
			}
			out.FormFields[name] = extraction.FormField{
				Name:   name,
				Anchor: convertAnchor(ff.GetFieldValue().GetTextAnchor()),
			}
		}
	}

	for _, e := range doc.GetEntities() {
		out.Entities = append(out.Entities, convertEntity(e))
	}
	return out
}

func convertEntity(e *documentaipb.Document_Entity) extraction.Entity {
	out := extraction.Entity{
		Type:        e.GetType(),
		MentionText: e.GetMentionText(),
		Anchor:      convertAnchor(e.GetTextAnchor()),
	}
	for _, p := range e.GetProperties() {
		out.Properties = append(out.Properties, convertEntity(p))
	}
	return out
}

func convertTable(t *documentaipb.Document_Page_Table) extraction.Table {
	return extraction.Table{
		HeaderRows: convertRows(t.GetHeaderRows()),
		BodyRows:   convertRows(t.GetBodyRows()),
	}
}

func convertRows(rows []*documentaipb.Document_Page_Table_TableRow) []extraction.TableRow {
	out := make([]extraction.TableRow, 0, len(rows))
	for _, row := range rows {
		r := extraction.TableRow{}
		for _, cell := range row.GetCells() {
			r.Cells = append(r.Cells, extraction.Cell{
				Anchor: convertAnchor(cell.GetLayout().GetTextAnchor()),
			})
		}
		out = append(out, r)
	}
	return out
}

func convertAnchor(a *documentaipb.Document_TextAnchor) *extraction.TextAnchor {
	if a == nil {
		return nil
	}
	out := &extraction.TextAnchor{Content: a.GetContent()}
	for _, seg := range a.GetTextSegments() {
		out.Segments = append(out.Segments, extraction.TextSegment{
			Start: int(seg.GetStartIndex()),
			End:   int(seg.GetEndIndex()),
		})
	}
	return out
}
