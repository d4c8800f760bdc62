package extraction

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

var (
	// A date-shaped substring: 03/14, 3-14-23, 03/14/2023, ...
	lineDatePattern = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?`)

	// A numeric substring, optionally prefixed with "$" and a sign.
	lineAmountPattern = regexp.MustCompile(`\$?(-?[\d,]+\.?\d*)`)
)

// Candidate amounts outside this magnitude range are treated as noise
// (reference numbers, years, cents columns).
const (
	minLineAmount = 10
	maxLineAmount = 10_000_000
)

const maxLineDescriptionLen = 200

// Date layouts accepted on a statement text line, tried in order. A bare
// month/day is assigned the current year.
var lineDateLayouts = []string{"1/2/2006", "1-2-2006", "1/2/06", "1/2"}

// parseTransactionsFromText recovers transactions from raw document text,
// line by line. It runs only when structured table extraction found nothing.
// Lines that yield no valid date or amount at any step are dropped silently;
// the parser never fails the overall extraction.
func (e *Extractor) parseTransactionsFromText(text string) []Transaction {
	var txs []Transaction
	if text == "" {
		return txs
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 5 {
			continue
		}
		if tx, ok := e.parseTransactionLine(line); ok {
			txs = append(txs, tx)
		}
	}
	return txs
}

func (e *Extractor) parseTransactionLine(line string) (Transaction, bool) {
	dateLoc := lineDatePattern.FindStringIndex(line)
	if dateLoc == nil {
		return Transaction{}, false
	}

	// Of all plausible numeric substrings, the largest magnitude is taken as
	// the amount; ties keep the earliest match. Substrings inside the date
	// match are not candidates, otherwise a four-digit year would win.
	var best string
	var bestAbs float64
	found := false
	for _, m := range lineAmountPattern.FindAllStringSubmatchIndex(line, -1) {
		if m[0] < dateLoc[1] && m[1] > dateLoc[0] {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(line[m[2]:m[3]], ",", ""), 64)
		if err != nil {
			continue
		}
		abs := math.Abs(v)
		if abs < minLineAmount || abs > maxLineAmount {
			continue
		}
		if !found || abs > bestAbs {
			best, bestAbs, found = line[m[0]:m[1]], abs, true
		}
	}
	if !found {
		return Transaction{}, false
	}

	date, ok := e.parseLineDate(line[dateLoc[0]:dateLoc[1]])
	if !ok {
		return Transaction{}, false
	}

	desc := ""
	if idx := strings.LastIndex(line, best); idx > dateLoc[1] {
		desc = strings.TrimSpace(line[dateLoc[1]:idx])
	}
	if len(desc) > maxLineDescriptionLen {
		desc = desc[:maxLineDescriptionLen]
	}

	txType := TypeDebit
	lower := strings.ToLower(desc)
	if strings.Contains(lower, "deposit") || strings.Contains(lower, "credit") {
		txType = TypeCredit
	}

	return Transaction{
		ParsedDate:  &date,
		Description: desc,
		Amount:      bestAbs,
		Type:        txType,
	}, true
}

func (e *Extractor) parseLineDate(s string) (civil.Date, bool) {
	for _, layout := range lineDateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		d := civil.DateOf(t)
		if layout == "1/2" {
			// time.Parse validated the day against year 0, which is a leap
			// year; stamping the current year can make 2/29 invalid.
			d.Year = e.now().Year()
			if !d.IsValid() {
				continue
			}
		}
		return d, true
	}
	return civil.Date{}, false
}
