package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Extractor derives form and statement records from annotated documents. It
// is a pure transform with no shared mutable state and is safe to use
// concurrently for independent documents. The injected clock feeds the two
// time-dependent rules: time-in-business and the current-year default for
// bare month/day dates.
type Extractor struct {
	now func() time.Time
}

// NewExtractor creates an extractor using the wall clock.
func NewExtractor() *Extractor {
	return &Extractor{now: time.Now}
}

// FormRecord is the extracted content of a business funding application form.
// All fields are resolved strings and may be empty; TimeInBusinessMonths is
// nil when it could not be derived.
type FormRecord struct {
	BusinessName         string `json:"business_name"`
	DBA                  string `json:"dba"`
	EIN                  string `json:"ein"`
	OwnerName            string `json:"owner_name"`
	OwnerSSN             string `json:"owner_ssn"`
	Address              string `json:"address"`
	Phone                string `json:"phone"`
	Email                string `json:"email"`
	Industry             string `json:"industry"`
	NAICSCode            string `json:"naics_code"`
	TimeInBusinessMonths *int   `json:"time_in_business_months"`
	StartDate            string `json:"start_date"`
	RequestedAmount      string `json:"requested_amount"`
	BusinessType         string `json:"business_type"`
}

// StatementRecord is the extracted content of a bank statement.
type StatementRecord struct {
	AccountNumber        string               `json:"account_number"`
	RoutingNumber        string               `json:"routing_number"`
	BankName             string               `json:"bank_name"`
	StatementPeriodStart string               `json:"statement_period_start"`
	StatementPeriodEnd   string               `json:"statement_period_end"`
	OpeningBalance       string               `json:"opening_balance"`
	ClosingBalance       string               `json:"closing_balance"`
	Transactions         []TransactionRecord  `json:"transactions"`
	DailyBalances        []DailyBalanceRecord `json:"daily_balances"`
}

// TransactionRecord is the serialized form of a Transaction. Structured dates
// are rendered as YYYY-MM-DD; raw cell dates are passed through untouched.
type TransactionRecord struct {
	Date        string  `json:"date,omitempty"`
	Description string  `json:"description,omitempty"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Section     string  `json:"section,omitempty"`
}

// DailyBalanceRecord is the serialized form of a DailyBalance.
type DailyBalanceRecord struct {
	Date        string  `json:"date,omitempty"`
	Balance     float64 `json:"balance"`
	Description string  `json:"description,omitempty"`
}

// Date layouts accepted for a business start date, tried in order.
var startDateLayouts = []string{
	"2006-1-2",
	"1/2/2006",
	"2/1/2006",
	"2006/1/2",
	"1-2-2006",
	"2-1-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// daysPerMonth approximates a calendar month for the time-in-business
// computation.
const daysPerMonth = 30.44

var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// ExtractForm builds a FormRecord by resolving each logical field through its
// alias chain and deriving time-in-business. It is total over any well-formed
// document; missing data degrades to empty fields.
func (e *Extractor) ExtractForm(doc *AnnotatedDocument) FormRecord {
	rec := FormRecord{
		BusinessName:    resolveAliases(doc, fieldAliases["business_name"]),
		DBA:             resolveAliases(doc, fieldAliases["dba"]),
		EIN:             resolveAliases(doc, fieldAliases["ein"]),
		OwnerName:       resolveAliases(doc, fieldAliases["owner_name"]),
		OwnerSSN:        resolveAliases(doc, fieldAliases["owner_ssn"]),
		Address:         resolveAliases(doc, fieldAliases["address"]),
		Phone:           resolveAliases(doc, fieldAliases["phone"]),
		Email:           resolveAliases(doc, fieldAliases["email"]),
		Industry:        resolveAliases(doc, fieldAliases["industry"]),
		NAICSCode:       resolveAliases(doc, fieldAliases["naics_code"]),
		StartDate:       resolveAliases(doc, fieldAliases["start_date"]),
		RequestedAmount: resolveAliases(doc, fieldAliases["requested_amount"]),
		BusinessType:    resolveAliases(doc, fieldAliases["business_type"]),
	}
	rec.TimeInBusinessMonths = e.timeInBusinessMonths(doc, rec.StartDate)
	return rec
}

// timeInBusinessMonths derives months in business in two stages: parse the
// start-date field against the known layouts, and only if that yields nothing
// (or zero months), fall back to the free-text duration field, taking its
// first numeric token and multiplying by 12 when the text mentions years.
func (e *Extractor) timeInBusinessMonths(doc *AnnotatedDocument, startDate string) *int {
	var months *int
	if s := strings.TrimSpace(startDate); s != "" {
		for _, layout := range startDateLayouts {
			t, err := time.Parse(layout, s)
			if err != nil {
				continue
			}
			days := int(e.now().Sub(t).Hours() / 24)
			m := int(float64(days) / daysPerMonth)
			months = &m
			break
		}
	}
	if months != nil && *months != 0 {
		return months
	}

	raw := resolveAliases(doc, fieldAliases["time_in_business"])
	if raw == "" {
		return months
	}
	num := numberPattern.FindString(raw)
	if num == "" {
		return months
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return months
	}
	if strings.Contains(strings.ToLower(raw), "year") {
		v *= 12
	}
	m := int(v)
	return &m
}

// ExtractStatement builds a StatementRecord: header fields through their
// alias chains, transactions from classified tables, daily balances from
// entities (with the table fallback), and finally the raw-text parser when no
// structured transaction was found and document text exists.
func (e *Extractor) ExtractStatement(doc *AnnotatedDocument) StatementRecord {
	txs := extractTransactions(doc)
	if len(txs) == 0 && doc != nil && doc.Text != "" {
		txs = e.parseTransactionsFromText(doc.Text)
	}
	balances := extractDailyBalances(doc)

	return StatementRecord{
		AccountNumber:        resolveAliases(doc, fieldAliases["account_number"]),
		RoutingNumber:        resolveAliases(doc, fieldAliases["routing_number"]),
		BankName:             resolveAliases(doc, fieldAliases["bank_name"]),
		StatementPeriodStart: resolveAliases(doc, fieldAliases["statement_period_start"]),
		StatementPeriodEnd:   resolveAliases(doc, fieldAliases["statement_period_end"]),
		OpeningBalance:       resolveAliases(doc, fieldAliases["opening_balance"]),
		ClosingBalance:       resolveAliases(doc, fieldAliases["closing_balance"]),
		Transactions:         serializeTransactions(txs),
		DailyBalances:        serializeBalances(balances),
	}
}

func serializeTransactions(txs []Transaction) []TransactionRecord {
	out := make([]TransactionRecord, 0, len(txs))
	for _, tx := range txs {
		date := tx.Date
		if tx.ParsedDate != nil {
			date = tx.ParsedDate.String()
		}
		out = append(out, TransactionRecord{
			Date:        date,
			Description: tx.Description,
			Amount:      tx.Amount,
			Type:        tx.Type,
			Section:     tx.Section,
		})
	}
	return out
}

func serializeBalances(balances []DailyBalance) []DailyBalanceRecord {
	out := make([]DailyBalanceRecord, 0, len(balances))
	for _, b := range balances {
		out = append(out, DailyBalanceRecord{
			Date:        b.Date,
			Balance:     b.Balance,
			Description: b.Description,
		})
	}
	return out
}
