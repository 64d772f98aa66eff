package ai

import (
	"strings"
	"testing"
	"time"
)

func TestAssessRisk_Bounds(t *testing.T) {
	e := NewEngine(1)
	for i := 0; i < 100; i++ {
		a := e.AssessRisk(85, "critical")
		if a.RiskScore < 0 || a.RiskScore > 1 {
			t.Fatalf("score out of range: %f", a.RiskScore)
		}
	}
}

func TestAssessRisk_Flags(t *testing.T) {
	e := NewEngine(42)

	a := e.AssessRisk(70, "Admitted")
	if len(a.RiskFlags) != 1 || a.RiskFlags[0] != "elderly" {
		t.Errorf("expected [elderly], got %v", a.RiskFlags)
	}

	a = e.AssessRisk(30, "Critical")
	if len(a.RiskFlags) != 1 || a.RiskFlags[0] != "critical_condition" {
		t.Errorf("expected [critical_condition], got %v", a.RiskFlags)
	}

	a = e.AssessRisk(30, "Admitted")
	if len(a.RiskFlags) != 0 {
		t.Errorf("expected no flags, got %v", a.RiskFlags)
	}
}

func TestSuggestNextAppointment_Tiers(t *testing.T) {
	admission := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		score float64
		days  int
	}{
		{0.9, 7},
		{0.5, 14},
		{0.2, 30},
	}
	for _, tc := range cases {
		got := SuggestNextAppointment(admission, tc.score)
		want := admission.AddDate(0, 0, tc.days)
		if !got.Equal(want) {
			t.Errorf("score %.1f: expected %v, got %v", tc.score, want, got)
		}
	}
}

func TestSummarize(t *testing.T) {
	a := Assessment{RiskScore: 0.8, RiskFlags: []string{"elderly"}}
	next := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	s := Summarize("Jane Doe", 72, "Female", "Admitted", a, next)

	if !strings.Contains(s, "high risk") {
		t.Errorf("expected high risk wording, got %q", s)
	}
	if !strings.Contains(s, "2025-02-01") {
		t.Errorf("expected next appointment date, got %q", s)
	}
}
