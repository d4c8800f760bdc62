package extraction

import (
	"testing"
)

func TestClassifySection(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    string
	}{
		{"deposits and additions", []string{"deposits and additions", "amount"}, SectionDeposits},
		{"electronic withdrawals", []string{"electronic withdrawal", "amount"}, SectionElectronicWithdrawals},
		{"checks paid", []string{"checks paid", "check number"}, SectionChecksPaid},
		{"check paid singular", []string{"check paid", "amount"}, SectionChecksPaid},
		{"atm withdrawals", []string{"atm withdrawal", "amount"}, SectionATMDebitWithdrawals},
		{"debit card withdrawals", []string{"debit card withdrawal", "amount"}, SectionATMDebitWithdrawals},
		{"fees", []string{"service fee", "amount"}, SectionFees},
		{"deposit rule precedes fee rule", []string{"deposits and additions", "fee"}, SectionDeposits},
		{"no match", []string{"date", "description", "amount"}, ""},
		{"empty headers", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifySection(tt.headers); got != tt.want {
				t.Errorf("classifySection(%v) = %q, want %q", tt.headers, got, tt.want)
			}
		})
	}
}

func TestClassifyColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    columnRoles
	}{
		{
			name:    "standard statement header",
			headers: []string{"date", "description", "amount", "type"},
			want:    columnRoles{date: 0, description: 1, amount: 2, txType: 3},
		},
		{
			name:    "alternate header names",
			headers: []string{"posted date", "memo", "withdrawal"},
			want:    columnRoles{date: 0, description: 1, amount: 2, txType: -1},
		},
		{
			name:    "role assigned at most once",
			headers: []string{"date", "posted date", "amount"},
			want:    columnRoles{date: 0, description: -1, amount: 2, txType: -1},
		},
		{
			name:    "debit and credit columns take first amount slot",
			headers: []string{"date", "description", "debit", "credit"},
			want:    columnRoles{date: 0, description: 1, amount: 2, txType: -1},
		},
		{
			name:    "no headers",
			headers: nil,
			want:    columnRoles{date: -1, description: -1, amount: -1, txType: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyColumns(tt.headers); got != tt.want {
				t.Errorf("classifyColumns(%v) = %+v, want %+v", tt.headers, got, tt.want)
			}
		})
	}
}

// Column role assignment must be injective: under well-formed headers no two
// roles may share a column index.
func TestClassifyColumns_Injective(t *testing.T) {
	roles := classifyColumns([]string{"transaction date", "details", "amount", "transaction type"})

	assigned := map[int]string{}
	for name, idx := range map[string]int{
		"date":        roles.date,
		"description": roles.description,
		"amount":      roles.amount,
		"type":        roles.txType,
	} {
		if idx < 0 {
			continue
		}
		if prev, ok := assigned[idx]; ok {
			t.Fatalf("column %d assigned to both %s and %s", idx, prev, name)
		}
		assigned[idx] = name
	}
}
