// Package matcher evaluates a folder name against a prioritized set of
// rules and returns at most one winning rule, or a verdict that the
// name was excluded or matched nothing. Patterns are compiled once at
// engine construction into a tagged variant rather than re-compiled
// per call.
package matcher

import (
	"regexp"
	"sort"
	"strings"

	ahocorasick "github.com/BobuSumisu/aho-corasick"
	"github.com/gobwas/glob"

	"github.com/xuanyiying/filemover-cli/internal/normalize"
	"github.com/xuanyiying/filemover-cli/internal/types"
	"github.com/xuanyiying/filemover-cli/pkg/ferrors"
)

// MatchStatus reports the outcome of FindMatchingRule beyond "a rule
// won": the caller must distinguish "no rule matched" from "an
// exclude rule matched," since the latter suppresses the FolderHit
// entirely regardless of any other rule that would otherwise apply.
type MatchStatus int

const (
	StatusMatched MatchStatus = iota
	StatusUnmatched
	StatusExcluded
)

type compiledRule struct {
	rule        types.Rule
	index       int // stable insertion order, for tie-breaking
	glob        glob.Glob
	regex       *regexp.Regexp
	containsVal string // case-as-compiled contains literal
}

// Engine holds the compiled rule set. It is immutable after
// construction; constructing it is the only place pattern compilation
// errors can surface.
type Engine struct {
	excludeRules []compiledRule
	rules        []compiledRule // sorted ascending by (priority, index)

	excludeContainsCS *ahocorasick.Trie
	excludeContainsCSIdx []int
	excludeContainsCI *ahocorasick.Trie
	excludeContainsCIIdx []int

	containsCS    *ahocorasick.Trie
	containsCSIdx []int
	containsCI    *ahocorasick.Trie
	containsCIIdx []int
}

// NewEngine compiles every enabled rule's pattern against normOpts. A
// compile failure is a ferrors.KindPattern error and aborts
// construction entirely rather than skipping the offending rule.
// normOpts must match the options passed to FindMatchingRule for
// every subject matched against this Engine, since both the compiled
// pattern and the subject need to fold under the same pipeline for
// the normalization to actually hold "modulo the fold."
func NewEngine(rules []types.Rule, normOpts types.NormalizationOptions) (*Engine, error) {
	e := &Engine{}
	var excludeContainsVals, containsVals []string
	var excludeContainsCIVals, containsCIVals []string

	for i, r := range rules {
		if !r.Enabled {
			continue
		}
		cr, err := compile(r, i, normOpts)
		if err != nil {
			return nil, err
		}

		if cr.rule.Pattern.Kind == types.PatternContains {
			if r.Pattern.IsExclude {
				if r.Pattern.CaseInsensitive {
					e.excludeContainsCIIdx = append(e.excludeContainsCIIdx, len(e.excludeRules))
					excludeContainsCIVals = append(excludeContainsCIVals, cr.containsVal)
				} else {
					e.excludeContainsCSIdx = append(e.excludeContainsCSIdx, len(e.excludeRules))
					excludeContainsVals = append(excludeContainsVals, cr.containsVal)
				}
			} else {
				if r.Pattern.CaseInsensitive {
					e.containsCIIdx = append(e.containsCIIdx, i)
					containsCIVals = append(containsCIVals, cr.containsVal)
				} else {
					e.containsCSIdx = append(e.containsCSIdx, i)
					containsVals = append(containsVals, cr.containsVal)
				}
			}
		}

		if r.Pattern.IsExclude {
			e.excludeRules = append(e.excludeRules, cr)
		} else {
			e.rules = append(e.rules, cr)
		}
	}

	sort.SliceStable(e.rules, func(i, j int) bool {
		return e.rules[i].rule.Priority < e.rules[j].rule.Priority
	})

	if len(excludeContainsVals) > 0 {
		e.excludeContainsCS = ahocorasick.NewTrieBuilder().AddStrings(excludeContainsVals).Build()
	}
	if len(excludeContainsCIVals) > 0 {
		e.excludeContainsCI = ahocorasick.NewTrieBuilder().AddStrings(excludeContainsCIVals).Build()
	}
	if len(containsVals) > 0 {
		e.containsCS = ahocorasick.NewTrieBuilder().AddStrings(containsVals).Build()
	}
	if len(containsCIVals) > 0 {
		e.containsCI = ahocorasick.NewTrieBuilder().AddStrings(containsCIVals).Build()
	}

	return e, nil
}

// compile applies the same normalize-then-fold pipeline to the
// pattern literal that FindMatchingRule applies to the subject name,
// so a pattern and a subject that are equal modulo normalization also
// match modulo normalization.
func compile(r types.Rule, index int, normOpts types.NormalizationOptions) (compiledRule, error) {
	cr := compiledRule{rule: r, index: index}
	value := normalize.Normalize(r.Pattern.Value, normOpts)
	if r.Pattern.CaseInsensitive {
		value = strings.ToLower(value)
	}

	switch r.Pattern.Kind {
	case types.PatternGlob:
		g, err := glob.Compile(value)
		if err != nil {
			return compiledRule{}, ferrors.New(ferrors.KindPattern, "matcher: pattern %q: %w", r.Pattern.Value, err)
		}
		cr.glob = g
	case types.PatternRegex:
		pattern := value
		if r.Pattern.CaseInsensitive {
			pattern = "(?i)" + normalize.Normalize(r.Pattern.Value, normOpts)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return compiledRule{}, ferrors.New(ferrors.KindPattern, "matcher: pattern %q: %w", r.Pattern.Value, err)
		}
		cr.regex = re
	case types.PatternContains:
		cr.containsVal = value
	default:
		return compiledRule{}, ferrors.New(ferrors.KindPattern, "matcher: unknown pattern kind %q", r.Pattern.Kind)
	}
	return cr, nil
}

func (cr compiledRule) matchesDirect(name string) bool {
	switch cr.rule.Pattern.Kind {
	case types.PatternGlob:
		subject := name
		if cr.rule.Pattern.CaseInsensitive {
			subject = strings.ToLower(subject)
		}
		return cr.glob.Match(subject)
	case types.PatternRegex:
		return cr.regex.MatchString(name)
	default:
		return false
	}
}

// FindMatchingRule implements the two-phase algorithm: exclude rules
// first (any match short-circuits to Excluded), then non-exclude
// rules in ascending-priority order with ties broken by insertion
// order.
func (e *Engine) FindMatchingRule(name string, normOpts types.NormalizationOptions) (*types.Rule, MatchStatus) {
	normalized := normalize.Normalize(name, normOpts)
	lowered := strings.ToLower(normalized)

	if e.anyExcludeMatches(normalized, lowered) {
		return nil, StatusExcluded
	}

	containsHits := containsMatchSet(e.containsCS, normalized, e.containsCSIdx)
	ciHits := containsMatchSet(e.containsCI, lowered, e.containsCIIdx)

	for i := range e.rules {
		cr := &e.rules[i]
		if cr.rule.Pattern.Kind == types.PatternContains {
			if containsHits[cr.index] || ciHits[cr.index] {
				r := cr.rule
				return &r, StatusMatched
			}
			continue
		}
		if cr.matchesDirect(normalized) {
			r := cr.rule
			return &r, StatusMatched
		}
	}
	return nil, StatusUnmatched
}

func (e *Engine) anyExcludeMatches(normalized, lowered string) bool {
	csHits := containsMatchSet(e.excludeContainsCS, normalized, e.excludeContainsCSIdx)
	ciHits := containsMatchSet(e.excludeContainsCI, lowered, e.excludeContainsCIIdx)

	for i, cr := range e.excludeRules {
		if cr.rule.Pattern.Kind == types.PatternContains {
			if csHits[i] || ciHits[i] {
				return true
			}
			continue
		}
		if cr.matchesDirect(normalized) {
			return true
		}
	}
	return false
}

// containsMatchSet runs one automaton pass and returns, per rule
// index (keyed by whatever ruleIdx records: the slot's position in
// excludeRules for exclude rules, the rule's insertion index for
// non-exclude rules, which survives the priority sort), a hit/miss
// bool, evaluated once instead of once per rule.
func containsMatchSet(trie *ahocorasick.Trie, subject string, ruleIdx []int) map[int]bool {
	hits := make(map[int]bool)
	if trie == nil {
		return hits
	}
	for _, m := range trie.MatchString(subject) {
		id := m.Id()
		if id >= 0 && id < len(ruleIdx) {
			hits[ruleIdx[id]] = true
		}
	}
	return hits
}
