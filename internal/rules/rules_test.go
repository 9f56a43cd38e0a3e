package rules

import (
	"context"
	"testing"
	"time"
)

const weekendRule = `if (weekday == "Saturday" || weekday == "Sunday") && evidence == "" {
	allow = false
	reason = "Weekend emergencies need evidence"
}`

func TestEvaluate(t *testing.T) {
	saturday := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		src    string
		in     Input
		allow  bool
		reason string
	}{
		{"empty rule", "", Input{}, true, ""},
		{"weekday", weekendRule, Input{Date: monday}, true, ""},
		{"weekend without evidence", weekendRule, Input{Date: saturday}, false, "Weekend emergencies need evidence"},
		{"weekend with evidence", weekendRule, Input{Date: saturday, Evidence: "log.txt"}, true, ""},
		{"points", `allow = points <= 50 && reporter == "SELF" && method == "UI"`, Input{Points: 50, Reporter: "SELF", Method: "UI"}, true, ""},
		{"notes", `allow = len(notes) > 3`, Input{Notes: "ok"}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Evaluate(context.Background(), tt.src, tt.in)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if v.Allow != tt.allow || v.Reason != tt.reason {
				t.Errorf("got %+v, want allow=%v reason=%q", v, tt.allow, tt.reason)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	if err := Compile(weekendRule); err != nil {
		t.Errorf("valid rule rejected: %v", err)
	}
	if err := Compile("allow = "); err == nil {
		t.Error("syntax error accepted")
	}
	if err := Compile("allow = unknown_name"); err == nil {
		t.Error("undefined global accepted")
	}
}

func TestEvaluateIsBounded(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := Evaluate(ctx, "for {}", Input{}); err == nil {
		t.Error("endless rule should be cancelled")
	}

	greedy := "a := []; for i := 0; i < 100000; i++ { a = append(a, [i]) }"
	if _, err := Evaluate(context.Background(), greedy, Input{}); err == nil {
		t.Error("allocation-heavy rule should be stopped")
	}
}
