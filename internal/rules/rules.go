// Package rules evaluates the optional capture rule scripts attached to action types.
//
// A rule is a tengo script run against the capture being submitted. The globals
// reporter, method, weekday, evidence, notes and points are provided, and the
// script answers through the predeclared globals allow (bool, default true) and
// reason (string):
//
//	if reporter == "PEER" && evidence == "" {
//	    allow = false
//	    reason = "peer reports need evidence"
//	}
package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/d5/tengo/v2"
)

const maxAllocs = 10000

// Input describes the capture a rule is evaluated against.
type Input struct {
	Reporter string
	Method   string
	Date     time.Time
	Evidence string
	Notes    string
	Points   int
}

// Verdict is the outcome of a rule.
type Verdict struct {
	Allow  bool
	Reason string
}

// Compile checks that src is a valid rule without running it.
func Compile(src string) error {
	_, err := newScript(src, Input{}).Compile()
	if err != nil {
		return fmt.Errorf("invalid capture rule: %w", err)
	}
	return nil
}

// Evaluate runs src against in. An empty script always allows.
func Evaluate(ctx context.Context, src string, in Input) (Verdict, error) {
	if src == "" {
		return Verdict{Allow: true}, nil
	}

	compiled, err := newScript(src, in).RunContext(ctx)
	if err != nil {
		return Verdict{}, fmt.Errorf("capture rule failed: %w", err)
	}

	return Verdict{
		Allow:  compiled.Get("allow").Bool(),
		Reason: compiled.Get("reason").String(),
	}, nil
}

func newScript(src string, in Input) *tengo.Script {
	script := tengo.NewScript([]byte(src))
	script.SetMaxAllocs(maxAllocs)

	// Add only fails for values tengo cannot convert; these are all primitives.
	_ = script.Add("reporter", in.Reporter)
	_ = script.Add("method", in.Method)
	_ = script.Add("weekday", in.Date.Weekday().String())
	_ = script.Add("evidence", in.Evidence)
	_ = script.Add("notes", in.Notes)
	_ = script.Add("points", in.Points)
	_ = script.Add("allow", true)
	_ = script.Add("reason", "")
	return script
}
