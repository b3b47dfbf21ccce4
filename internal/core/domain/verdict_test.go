package domain

import (
	"strings"
	"testing"
)

func TestVerdictHeadline(t *testing.T) {
	lift := 50.0
	v := Verdict{
		WinningVariantID: "a",
		Standings: []Standing{
			{VariantID: "a", Name: "Control", Rate: 0.6},
			{VariantID: "b", Name: "Bold", Rate: 0.4},
		},
		LiftPercentage: &lift,
	}
	got := v.Headline()
	if !strings.Contains(got, "Control leads") || !strings.Contains(got, "50.0% above Bold") {
		t.Fatalf("unexpected headline %q", got)
	}

	v = Verdict{InsufficientData: true, MinSampleViews: 30}
	if !strings.HasPrefix(v.Headline(), "Insufficient data") {
		t.Fatalf("unexpected headline %q", v.Headline())
	}
	if _, ok := v.Winner(); ok {
		t.Fatal("insufficient verdict must not have a winner")
	}
}
