package autotile

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

//go:embed default.rules
var defaultRuleText string

// Rule maps a neighborhood pattern to an output tile id
type Rule struct {
	Pattern     Pattern
	TileID      int
	Constraints []Constraint
	Weight      float64
}

// HasConstraints returns true if the rule carries directional constraints
func (r *Rule) HasConstraints() bool {
	return len(r.Constraints) > 0
}

// Header renders the rule header in rule-file form
func (r *Rule) Header() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(r.TileID))
	if r.Weight != 1 {
		b.WriteString(":")
		b.WriteString(strconv.FormatFloat(r.Weight, 'g', -1, 64))
	}
	for _, c := range r.Constraints {
		b.WriteString(c.String())
	}
	return b.String()
}

// RuleSet is an ordered, immutable collection of rules. Rules that share a
// pattern stay distinct; they are decorative variants picked by weight or by
// their constraints.
type RuleSet struct {
	rules []Rule

	// Distinct patterns in first-seen order, and the rule indices carrying each.
	patterns  []Pattern
	byPattern map[Pattern][]int
}

// NewRuleSet builds a RuleSet from rules, preserving their order
func NewRuleSet(rules []Rule) *RuleSet {
	rs := &RuleSet{
		rules:     make([]Rule, len(rules)),
		byPattern: make(map[Pattern][]int),
	}
	for i, r := range rules {
		r.Constraints = append([]Constraint(nil), r.Constraints...)
		rs.rules[i] = r
		if _, seen := rs.byPattern[r.Pattern]; !seen {
			rs.patterns = append(rs.patterns, r.Pattern)
		}
		rs.byPattern[r.Pattern] = append(rs.byPattern[r.Pattern], i)
	}
	return rs
}

// Len returns the number of rules
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// PatternCount returns the number of distinct patterns
func (rs *RuleSet) PatternCount() int {
	return len(rs.patterns)
}

// Rules returns a copy of the rules in load order
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// RulesMatching returns every rule whose pattern matches observed, in load
// order. It does not modify the set and is safe for concurrent use.
func (rs *RuleSet) RulesMatching(observed Pattern) []Rule {
	var idx []int
	for _, p := range rs.patterns {
		if p.Matches(observed) {
			idx = append(idx, rs.byPattern[p]...)
		}
	}
	if len(idx) == 0 {
		return nil
	}
	sort.Ints(idx)

	matched := make([]Rule, len(idx))
	for i, j := range idx {
		matched[i] = rs.rules[j]
	}
	return matched
}

// DefaultRules returns the embedded dungeon rule set
func DefaultRules() *RuleSet {
	rs, err := ParseRules(strings.NewReader(defaultRuleText))
	if err != nil {
		// The embedded file is covered by tests; a failure here is a build defect.
		panic(err)
	}
	return rs
}

// LoadRules reads and parses a rule file
func LoadRules(path string) (*RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule file: %w", err)
	}
	defer f.Close()

	rs, err := ParseRules(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// ruleBlock is one blank-line separated record of a rule file
type ruleBlock struct {
	number  int
	line    int
	header  string
	pattern strings.Builder
}

// ParseRules parses rule-file text. Blocks are separated by blank lines; the
// first line of a block is the header and the remaining lines form the pattern.
// Lines starting with '#' are comments. The whole load fails on the first bad
// block.
func ParseRules(r io.Reader) (*RuleSet, error) {
	var (
		rules   []Rule
		current *ruleBlock
		blocks  int
		lineNo  int
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		rule, err := current.parse()
		current = nil
		if err != nil {
			return err
		}
		rules = append(rules, rule)
		return nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		if current == nil {
			blocks++
			current = &ruleBlock{number: blocks, line: lineNo, header: line}
			continue
		}
		current.pattern.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return NewRuleSet(rules), nil
}

func (b *ruleBlock) fail(reason string, err error) *RuleParseError {
	return &RuleParseError{Block: b.number, Line: b.line, Header: b.header, Reason: reason, Err: err}
}

// parse turns the block into a Rule. Header grammar:
//
//	tileId[:weight](@<dir>tileId)* [# comment]
func (b *ruleBlock) parse() (Rule, error) {
	header := b.header
	if i := strings.IndexByte(header, '#'); i >= 0 {
		header = header[:i]
	}
	parts := strings.Split(strings.TrimSpace(header), "@")

	base := strings.TrimSpace(parts[0])
	if base == "" {
		return Rule{}, b.fail("missing tile id", nil)
	}

	rule := Rule{Weight: 1}
	idText, weightText, hasWeight := strings.Cut(base, ":")
	id, err := strconv.Atoi(strings.TrimSpace(idText))
	if err != nil {
		return Rule{}, b.fail("invalid tile id", err)
	}
	rule.TileID = id

	if hasWeight {
		w, err := strconv.ParseFloat(strings.TrimSpace(weightText), 64)
		if err != nil {
			return Rule{}, b.fail("invalid weight", err)
		}
		if w <= 0 || math.IsInf(w, 0) || math.IsNaN(w) {
			return Rule{}, b.fail(fmt.Sprintf("weight must be positive, got %v", w), nil)
		}
		rule.Weight = w
	}

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			return Rule{}, b.fail("empty constraint", nil)
		}
		dir, strength, ok := parseConstraintLetter(part[0])
		if !ok {
			return Rule{}, b.fail(fmt.Sprintf("unknown direction %q", part[0]), nil)
		}
		target, err := strconv.Atoi(strings.TrimSpace(part[1:]))
		if err != nil {
			return Rule{}, b.fail("invalid constraint tile id", err)
		}
		rule.Constraints = append(rule.Constraints, Constraint{Dir: dir, Strength: strength, TileID: target})
	}

	if b.pattern.Len() == 0 {
		return Rule{}, b.fail("missing pattern", nil)
	}
	pattern, err := DecodePattern(b.pattern.String())
	if err != nil {
		return Rule{}, b.fail("bad pattern", err)
	}
	rule.Pattern = pattern

	return rule, nil
}
