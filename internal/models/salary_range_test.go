package models

import "testing"

func TestNewSalaryRange(t *testing.T) {
	r, err := NewSalaryRange(90000, 120000.5, "USD", "yearly")
	if err != nil {
		t.Fatalf("NewSalaryRange() error = %v", err)
	}
	if r.Min() != 90000 || r.Max() != 120000.5 || r.Currency() != "USD" || r.Period() != SalaryPeriodYearly {
		t.Fatalf("unexpected range: %s", r)
	}

	if _, err := NewSalaryRange(50, 50, "EUR", SalaryPeriodHourly); err != nil {
		t.Fatalf("min == max should be allowed: %v", err)
	}
}

func TestNewSalaryRangeRejectsInvalid(t *testing.T) {
	cases := []struct {
		name     string
		min, max float64
		period   SalaryPeriod
	}{
		{"negative min", -1, 10, SalaryPeriodYearly},
		{"negative max", 0, -10, SalaryPeriodYearly},
		{"min above max", 20, 10, SalaryPeriodMonthly},
		{"unknown period", 1, 2, "FORTNIGHTLY"},
	}
	for _, tc := range cases {
		if _, err := NewSalaryRange(tc.min, tc.max, "USD", tc.period); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestParseApplicationStatus(t *testing.T) {
	got, err := ParseApplicationStatus(" interviewing ")
	if err != nil || got != ApplicationStatusInterviewing {
		t.Fatalf("ParseApplicationStatus() = %q, %v", got, err)
	}
	if _, err := ParseApplicationStatus("hired"); err == nil {
		t.Fatalf("expected unknown status to fail")
	}
	if _, err := ParseOpportunityType("contract"); err != nil {
		t.Fatalf("ParseOpportunityType(contract) error = %v", err)
	}
	if _, err := ParseOpportunityStatus("open"); err == nil {
		t.Fatalf("expected unknown posting status to fail")
	}
}
