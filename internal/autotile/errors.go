package autotile

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedPattern = errors.New("autotile: malformed pattern")
	ErrRuleParse        = errors.New("autotile: rule parse error")
	ErrUnknownCompass   = errors.New("autotile: unknown compass")
	ErrNilGrid          = errors.New("autotile: nil grid")
	ErrNilRules         = errors.New("autotile: nil rule set")
)

// MalformedPatternError reports a pattern string that is not exactly nine
// recognized symbols. Pos is the offending index, or -1 for a length mismatch.
type MalformedPatternError struct {
	Text string
	Pos  int
}

func (e *MalformedPatternError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("autotile: malformed pattern %q: want %d symbols, got %d", e.Text, PatternSize, len(e.Text))
	}
	return fmt.Sprintf("autotile: malformed pattern %q: unknown symbol %q at %d", e.Text, e.Text[e.Pos], e.Pos)
}

func (e *MalformedPatternError) Unwrap() error {
	return ErrMalformedPattern
}

// RuleParseError identifies the rule block that failed to load. Block is the
// 1-indexed block number and Line the 1-indexed line of the block header.
type RuleParseError struct {
	Block  int
	Line   int
	Header string
	Reason string
	Err    error
}

func (e *RuleParseError) Error() string {
	msg := fmt.Sprintf("autotile: rule block %d (line %d, header %q): %s", e.Block, e.Line, e.Header, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the ErrRuleParse sentinel and the underlying cause.
func (e *RuleParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRuleParse, e.Err}
	}
	return []error{ErrRuleParse}
}
