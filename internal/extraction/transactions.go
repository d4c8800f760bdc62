package extraction

import (
	"math"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
)

// Transaction direction. Amounts are always non-negative; the sign of the
// source value is captured here.
const (
	TypeCredit = "CREDIT"
	TypeDebit  = "DEBIT"
)

// Transaction is one statement row recovered from a classified table or from
// the raw-text fallback parser. Date holds the raw cell text; ParsedDate is
// set only when the fallback parser produced a structured date, and takes
// precedence at serialization time.
type Transaction struct {
	Date        string
	ParsedDate  *civil.Date
	Description string
	Amount      float64
	Type        string
	Section     string
}

// extractTransactions walks every table on every page and builds transaction
// records from rows whose amount cell parses. Output order is table encounter
// order crossed with row encounter order; rows are never reordered.
func extractTransactions(doc *AnnotatedDocument) []Transaction {
	var txs []Transaction
	if doc == nil {
		return txs
	}

	for _, page := range doc.Pages {
		for _, table := range page.Tables {
			headers := headerCells(doc, table)
			section := classifySection(headers)
			roles := classifyColumns(headers)

			for _, row := range table.BodyRows {
				cells := resolveCells(doc, row)
				if tx, ok := buildTransaction(cells, roles, section); ok {
					txs = append(txs, tx)
				}
			}
		}
	}
	return txs
}

func resolveCells(doc *AnnotatedDocument, row TableRow) []string {
	cells := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		cells[i] = strings.TrimSpace(ResolveAnchor(doc, c.Anchor))
	}
	return cells
}

// buildTransaction assembles a transaction from one resolved body row. A row
// without an identified amount column, or whose amount cell does not parse,
// is skipped silently.
func buildTransaction(cells []string, roles columnRoles, section string) (Transaction, bool) {
	if roles.amount < 0 || roles.amount >= len(cells) {
		return Transaction{}, false
	}
	raw, err := parseAmount(cells[roles.amount])
	if err != nil {
		return Transaction{}, false
	}

	tx := Transaction{Amount: math.Abs(raw)}

	if roles.date >= 0 && roles.date < len(cells) {
		tx.Date = cells[roles.date]
	}
	if roles.description >= 0 && roles.description < len(cells) {
		tx.Description = cells[roles.description]
	}

	if roles.txType >= 0 && roles.txType < len(cells) {
		t := strings.ToLower(cells[roles.txType])
		if strings.Contains(t, "credit") || strings.Contains(t, "deposit") {
			tx.Type = TypeCredit
		} else {
			tx.Type = TypeDebit
		}
	} else if raw >= 0 {
		// Weak signal: statement tables often print debits unsigned, so a
		// non-negative value does not prove a credit. Kept as documented
		// behavior for tables with no type column.
		tx.Type = TypeCredit
	} else {
		tx.Type = TypeDebit
	}

	switch {
	case section != "":
		tx.Section = section
	case raw >= 0:
		tx.Section = SectionDeposits
	default:
		tx.Section = SectionWithdrawals
	}

	return tx, true
}

// parseAmount parses a monetary cell value after stripping "$" and ",".
func parseAmount(s string) (float64, error) {
	clean := strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(s))
	return strconv.ParseFloat(clean, 64)
}
