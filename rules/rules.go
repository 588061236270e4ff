// Package rules implements the ordered substitution engines used on both
// sides of the external translation step: pretranslation (stabilize
// technical and project terms before hand-off) and correction (repair the
// systematic placeholder damage the translation service introduces).
package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Rule is a single substitution. Pattern is a literal string unless Regex is
// set, in which case it is an RE2 expression and Replace may use $1-style
// group references.
type Rule struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
	Regex   bool   `yaml:"regex,omitempty"`
}

// compiled is a rule ready for application.
type compiled struct {
	lit     string
	re      *regexp.Regexp
	replace string
}

// Engine applies an ordered list of rules to text. Application is a pure
// function of the input text and the rule list: rules run in order, each
// over the full output of the previous one.
type Engine struct {
	rules []compiled
}

// NewEngine compiles a rule list into an engine.
func NewEngine(rules []Rule) (*Engine, error) {
	e := &Engine{rules: make([]compiled, 0, len(rules))}
	for i, r := range rules {
		if r.Pattern == "" {
			return nil, fmt.Errorf("rule %d: empty pattern", i+1)
		}
		if !r.Regex {
			e.rules = append(e.rules, compiled{lit: r.Pattern, replace: r.Replace})
			continue
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		e.rules = append(e.rules, compiled{re: re, replace: r.Replace})
	}
	return e, nil
}

// Apply runs every rule, in order, over text.
func (e *Engine) Apply(text string) string {
	for _, r := range e.rules {
		if r.re != nil {
			text = r.re.ReplaceAllString(text, r.replace)
		} else {
			text = strings.ReplaceAll(text, r.lit, r.replace)
		}
	}
	return text
}

// Len returns the number of rules in the engine.
func (e *Engine) Len() int { return len(e.rules) }

// ---------------------------------------------------------------------------
// Pretranslation
// ---------------------------------------------------------------------------

// NewPretranslator builds the phase-1 engine from a glossary of
// term → replacement pairs plus any extra configured rules.
//
// Each glossary pair becomes a whole-word rule, and a capitalized variant of
// the pair is added automatically so sentence-initial uses are covered too.
// Glossary rules run longest-term-first (then lexically) so multi-word terms
// win over their substrings; extra rules run after the glossary, in the
// order configured.
func NewPretranslator(glossary map[string]string, extra []Rule) (*Engine, error) {
	terms := make([]string, 0, len(glossary))
	for term := range glossary {
		if strings.TrimSpace(term) == "" {
			continue
		}
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})

	var rules []Rule
	for _, term := range terms {
		repl := glossary[term]
		rules = append(rules, wholeWordRule(term, repl))
		if c := capitalize(term); c != term {
			rules = append(rules, wholeWordRule(c, capitalize(repl)))
		}
	}
	rules = append(rules, extra...)
	return NewEngine(rules)
}

// wholeWordRule builds a regex rule matching term only at word boundaries.
func wholeWordRule(term, replace string) Rule {
	return Rule{
		Pattern: `\b` + regexp.QuoteMeta(term) + `\b`,
		Replace: replace,
		Regex:   true,
	}
}

// capitalize upper-cases the first letter of s.
func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// ---------------------------------------------------------------------------
// Post-translation correction
// ---------------------------------------------------------------------------

// Built-in corruption signatures. The translation service reliably inserts
// spaces into placeholder tokens; each rule restores one canonical form and
// matches nothing else, so text without recognized corruption passes
// through unchanged.
var builtinCorrections = []Rule{
	// <x id = "1" />  (any spacing variant)  →  <x id="1"/>
	{Pattern: `<x\s+id\s*=\s*"(\d+)"\s*/>`, Replace: `<x id="$1"/>`, Regex: true},
	// % s, % 1$s  →  %s, %1$s  (printf verbs split by whitespace)
	{Pattern: `%\s+(\d+\$)?([sdfvqxXeEgGoUc])\b`, Replace: `%$1$2`, Regex: true},
	// { 0 }  →  {0}  (brace-indexed placeholders)
	{Pattern: `\{\s*(\d+)\s*\}`, Replace: `{$1}`, Regex: true},
}

// NewCorrector builds the phase-2 engine: the built-in corruption
// signatures first, then any extra configured rules in order.
func NewCorrector(extra []Rule) (*Engine, error) {
	rules := make([]Rule, 0, len(builtinCorrections)+len(extra))
	rules = append(rules, builtinCorrections...)
	rules = append(rules, extra...)
	return NewEngine(rules)
}
