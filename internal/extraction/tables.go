package extraction

import (
	"strings"
)

// Section labels assigned to transactions based on the table they came from.
const (
	SectionDeposits              = "DEPOSITS_AND_ADDITIONS"
	SectionElectronicWithdrawals = "ELECTRONIC_WITHDRAWALS"
	SectionChecksPaid            = "CHECKS_PAID"
	SectionATMDebitWithdrawals   = "ATM_DEBIT_WITHDRAWALS"
	SectionFees                  = "FEES"
	SectionWithdrawals           = "WITHDRAWALS"
)

// Header keywords per column role. Substring tests, lowercase.
var (
	dateHeaders        = []string{"date", "transaction date", "posted date"}
	descriptionHeaders = []string{"description", "memo", "details"}
	amountHeaders      = []string{"amount", "debit", "credit", "withdrawal", "deposit"}
	typeHeaders        = []string{"type", "transaction type"}
)

// classifySection infers a table's section label from its lowercased header
// cells. Rules are tested in priority order against the space-joined header
// text; the first match wins. Returns "" when no rule matches, in which case
// the caller falls back to a sign-derived label at transaction build time.
func classifySection(headerCells []string) string {
	if len(headerCells) == 0 {
		return ""
	}
	h := strings.Join(headerCells, " ")

	switch {
	case strings.Contains(h, "deposit") && strings.Contains(h, "addition"):
		return SectionDeposits
	case strings.Contains(h, "electronic") && strings.Contains(h, "withdrawal"):
		return SectionElectronicWithdrawals
	case strings.Contains(h, "checks paid") || strings.Contains(h, "check paid"):
		return SectionChecksPaid
	case (strings.Contains(h, "atm") || strings.Contains(h, "debit card")) && strings.Contains(h, "withdrawal"):
		return SectionATMDebitWithdrawals
	case strings.Contains(h, "fee"):
		return SectionFees
	}
	return ""
}

// columnRoles records which column index holds each kind of transaction data.
// -1 means the role was not identified.
type columnRoles struct {
	date        int
	description int
	amount      int
	txType      int
}

// classifyColumns assigns column roles in a single left-to-right pass over
// the lowercased header cells. The first matching category per column wins,
// and each role is assigned at most once; later columns matching an
// already-taken role fall through to the remaining categories.
func classifyColumns(headerCells []string) columnRoles {
	roles := columnRoles{date: -1, description: -1, amount: -1, txType: -1}

	for i, h := range headerCells {
		switch {
		case roles.date < 0 && containsAny(h, dateHeaders):
			roles.date = i
		case roles.description < 0 && containsAny(h, descriptionHeaders):
			roles.description = i
		case roles.amount < 0 && containsAny(h, amountHeaders):
			roles.amount = i
		case roles.txType < 0 && containsAny(h, typeHeaders):
			roles.txType = i
		}
	}
	return roles
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// headerCells resolves and lowercases every header cell of a table, across
// all header rows in order.
func headerCells(doc *AnnotatedDocument, table Table) []string {
	var cells []string
	for _, row := range table.HeaderRows {
		for _, c := range row.Cells {
			cells = append(cells, strings.ToLower(strings.TrimSpace(ResolveAnchor(doc, c.Anchor))))
		}
	}
	return cells
}
