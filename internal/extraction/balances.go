package extraction

import (
	"strings"
)

// DailyBalance is a dated balance derived from annotated entities or, when no
// balance entities exist, from heuristic table scanning. Unlike transaction
// amounts, the sign of the parsed value is preserved.
type DailyBalance struct {
	Date        string
	Balance     float64
	Description string
}

// extractDailyBalances scans document entities whose type tag contains
// "balance" or "daily". An entry is kept only if one of its properties
// yielded a numeric balance. The table-scanning fallback runs only when the
// entity path produced zero entries.
func extractDailyBalances(doc *AnnotatedDocument) []DailyBalance {
	var balances []DailyBalance
	if doc == nil {
		return balances
	}

	for _, e := range doc.Entities {
		tag := strings.ToLower(e.Type)
		if !strings.Contains(tag, "balance") && !strings.Contains(tag, "daily") {
			continue
		}

		b := DailyBalance{Description: e.MentionText}
		parsed := false
		for _, p := range e.Properties {
			pt := strings.ToLower(p.Type)
			pv := p.MentionText
			if pv == "" {
				pv = ResolveAnchor(doc, p.Anchor)
			}

			switch {
			case strings.Contains(pt, "date"):
				b.Date = pv
			case strings.Contains(pt, "balance") || strings.Contains(pt, "amount"):
				if v, err := parseAmount(pv); err == nil {
					b.Balance = v
					parsed = true
				}
			}
		}
		if parsed {
			balances = append(balances, b)
		}
	}

	if len(balances) > 0 {
		return balances
	}
	return scanBalanceTables(doc)
}

// scanBalanceTables recovers balances from tables whose joined header text
// mentions "balance" or "ending": the first cell of each body row is taken as
// the date, the second as the balance. Rows that fail to parse are skipped.
func scanBalanceTables(doc *AnnotatedDocument) []DailyBalance {
	var balances []DailyBalance

	for _, page := range doc.Pages {
		for _, table := range page.Tables {
			joined := strings.Join(headerCells(doc, table), " ")
			if !strings.Contains(joined, "balance") && !strings.Contains(joined, "ending") {
				continue
			}

			for _, row := range table.BodyRows {
				cells := resolveCells(doc, row)
				if len(cells) < 2 {
					continue
				}
				v, err := parseAmount(cells[1])
				if err != nil {
					continue
				}
				balances = append(balances, DailyBalance{Date: cells[0], Balance: v})
			}
		}
	}
	return balances
}
