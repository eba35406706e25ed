package scan

import "testing"

func TestNormalizeSeverity(t *testing.T) {
	cases := map[string]Severity{
		"critical":  SeverityCritical,
		"CRIT":      SeverityCritical,
		"High":      SeverityHigh,
		"moderate":  SeverityMedium,
		"med":       SeverityMedium,
		"info":      SeverityLow,
		" low ":     SeverityLow,
		"bananas":   SeverityLow,
		"":          SeverityLow,
		"URGENT!!!": SeverityLow,
	}
	for in, want := range cases {
		if got := NormalizeSeverity(in); got != want {
			t.Errorf("NormalizeSeverity(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestMeetsThreshold(t *testing.T) {
	cases := []struct {
		sev       Severity
		threshold string
		want      bool
	}{
		{SeverityHigh, "high", true},
		{SeverityCritical, "high", true},
		{SeverityMedium, "high", false},
		{SeverityLow, "low", true},
		{SeverityCritical, "none", false},
		{SeverityCritical, "", false},
	}
	for _, tc := range cases {
		if got := MeetsThreshold(tc.sev, tc.threshold); got != tc.want {
			t.Errorf("MeetsThreshold(%s, %q) = %v, want %v", tc.sev, tc.threshold, got, tc.want)
		}
	}
}

func TestComputeSummary(t *testing.T) {
	findings := []Finding{
		{Severity: SeverityLow},
		{Severity: SeverityHigh},
		{Severity: SeverityHigh},
		{Severity: SeverityCritical},
	}
	s := ComputeSummary(findings)
	if s.Counts.Low != 1 || s.Counts.High != 2 || s.Counts.Critical != 1 {
		t.Errorf("Counts = %+v", s.Counts)
	}
	if s.HighestSeverity != SeverityCritical {
		t.Errorf("HighestSeverity = %s, want critical", s.HighestSeverity)
	}

	empty := ComputeSummary(nil)
	if empty.HighestSeverity != "" {
		t.Errorf("empty HighestSeverity = %q, want empty", empty.HighestSeverity)
	}
}

func TestFindingID(t *testing.T) {
	f := Finding{File: "main.go", Description: "thing", Line: 3}
	id1 := FindingID(f)
	id2 := FindingID(f)
	if id1 != id2 {
		t.Error("FindingID should be deterministic")
	}
	if id1 == "" || len(id1) != 16 {
		t.Errorf("FindingID = %q, want 16 hex chars", id1)
	}

	other := FindingID(Finding{File: "main.go", Description: "thing", Line: 4})
	if other == id1 {
		t.Error("different line should produce different ID")
	}
}
