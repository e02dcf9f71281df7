package assets

import (
	"github.com/lexandro/assetmod-mcp/option"
)

// Op is the kind of registry mutation a change applies.
type Op int

const (
	OpNone Op = iota
	OpUpsert
	OpDelete
)

func (op Op) String() string {
	switch op {
	case OpUpsert:
		return "upsert"
	case OpDelete:
		return "delete"
	default:
		return "none"
	}
}

// Change describes one registry mutation.
type Change struct {
	Op       Op
	Path     string
	Rule     *option.SuggestionRule // rule after the change, nil on delete
	Previous *option.SuggestionRule // rule before the change, nil when absent
}

// RuleMatcher is the per-rule predicate used by incremental updates.
type RuleMatcher interface {
	Rules() []option.SuggestionRule
	MatchesRule(path string, rule *option.SuggestionRule) bool
}

// Reconcile computes the mutation a change notification for path implies.
// It does not touch the registry.
//
// Every rule is tested independently. With LastMatch the last matching rule
// wins; with FirstMatch the first one does. A path that no longer exists is
// removed whatever rule it had, and an existing path no rule matches any more
// is removed as well.
func Reconcile(current Reader, path string, exists bool, matcher RuleMatcher, policy option.MatchPolicy) Change {
	previous := current.Lookup(path)

	if !exists {
		if previous == nil {
			return Change{Op: OpNone, Path: path}
		}
		return Change{Op: OpDelete, Path: path, Previous: previous}
	}

	var matched *option.SuggestionRule
	rules := matcher.Rules()
	for i := range rules {
		if !matcher.MatchesRule(path, &rules[i]) {
			continue
		}
		matched = &rules[i]
		if policy == option.FirstMatch {
			break
		}
	}

	switch {
	case matched == nil && previous == nil:
		return Change{Op: OpNone, Path: path}
	case matched == nil:
		return Change{Op: OpDelete, Path: path, Previous: previous}
	case matched == previous:
		return Change{Op: OpNone, Path: path, Rule: matched, Previous: previous}
	default:
		return Change{Op: OpUpsert, Path: path, Rule: matched, Previous: previous}
	}
}
