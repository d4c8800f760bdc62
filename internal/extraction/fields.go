package extraction

import (
	"sort"
	"strings"
)

// fieldAliases maps each logical field to the ordered list of raw field names
// and entity types accepted for it. Different annotation processors name the
// same concept differently; the first alias that resolves non-empty wins.
var fieldAliases = map[string][]string{
	// Application form fields.
	"business_name":    {"business_name", "company_name"},
	"dba":              {"dba", "doing_business_as"},
	"ein":              {"ein", "tax_id"},
	"owner_name":       {"owner_name", "owner"},
	"owner_ssn":        {"owner_ssn", "ssn"},
	"address":          {"address", "business_address"},
	"phone":            {"phone", "phone_number"},
	"email":            {"email", "email_address"},
	"industry":         {"industry", "business_type"},
	"naics_code":       {"naics_code", "naics"},
	"start_date":       {"start_date", "business_start_date"},
	"requested_amount": {"requested_amount", "funding_amount"},
	"business_type":    {"business_type", "entity_type"},
	"time_in_business": {"time_in_business", "time_in_business_months", "tib"},

	// Bank statement fields.
	"account_number":         {"account_number", "account_no"},
	"routing_number":         {"routing_number", "aba_number"},
	"bank_name":              {"bank_name", "institution_name"},
	"statement_period_start": {"statement_start_date", "statement_period_start", "period_start"},
	"statement_period_end":   {"statement_end_date", "statement_period_end", "period_end"},
	"opening_balance":        {"starting_balance", "opening_balance", "beginning_balance"},
	"closing_balance":        {"ending_balance", "closing_balance"},
}

// ResolveField looks up a raw field name in the document. Lookup order, first
// non-empty result wins:
//
//  1. exact key match in the form-field table,
//  2. case-insensitive key match in the form-field table,
//  3. entity whose type matches the name case-insensitively, preferring its
//     mention text over anchor resolution.
//
// An absent field is not an error; it resolves to "".
func ResolveField(doc *AnnotatedDocument, name string) string {
	if doc == nil {
		return ""
	}

	if f, ok := doc.FormFields[name]; ok {
		if v := resolveFormField(doc, f); v != "" {
			return v
		}
	}

	// Map iteration order is randomized, so case-insensitive candidates are
	// collected and tried in sorted key order to keep resolution stable when
	// several keys fold to the same name.
	var folded []string
	for key := range doc.FormFields {
		if key == name || !strings.EqualFold(key, name) {
			continue
		}
		folded = append(folded, key)
	}
	sort.Strings(folded)
	for _, key := range folded {
		if v := resolveFormField(doc, doc.FormFields[key]); v != "" {
			return v
		}
	}

	for _, e := range doc.Entities {
		if !strings.EqualFold(e.Type, name) {
			continue
		}
		if e.MentionText != "" {
			return e.MentionText
		}
		if v := ResolveAnchor(doc, e.Anchor); v != "" {
			return v
		}
	}

	return ""
}

func resolveFormField(doc *AnnotatedDocument, f FormField) string {
	if f.Anchor != nil {
		return ResolveAnchor(doc, f.Anchor)
	}
	return f.Value
}

// resolveAliases returns the value of the first alias that resolves non-empty.
func resolveAliases(doc *AnnotatedDocument, aliases []string) string {
	for _, name := range aliases {
		if v := ResolveField(doc, name); v != "" {
			return v
		}
	}
	return ""
}
