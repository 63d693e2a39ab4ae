package relay

import (
	"fmt"
	"regexp"

	"github.com/mkbright/sentry-relay/internal/config"
)

// Router decides, per project slug, whether an event is ignored and which
// API token authorizes its enrichment.
//
// Both tables are ordered and first-match-wins: patterns may overlap, so
// operators must list specific patterns before general catch-alls. All
// matching is anchored at the start of the slug (Python re.match
// semantics): the pattern must match from the first character but need
// not consume the whole slug.
type Router struct {
	ignore []*regexp.Regexp
	rules  []tokenRule
}

type tokenRule struct {
	pattern *regexp.Regexp
	token   string
}

// NewRouter compiles the configured pattern tables, preserving their
// declaration order.
func NewRouter(tokens []config.TokenRule, ignore []string) (*Router, error) {
	r := &Router{
		rules: make([]tokenRule, 0, len(tokens)),
	}

	for i, rule := range tokens {
		re, err := compilePrefix(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("token rule %d (%q): %w", i, rule.Pattern, err)
		}
		r.rules = append(r.rules, tokenRule{pattern: re, token: rule.Token})
	}

	for i, pat := range ignore {
		re, err := compilePrefix(pat)
		if err != nil {
			return nil, fmt.Errorf("ignore pattern %d (%q): %w", i, pat, err)
		}
		r.ignore = append(r.ignore, re)
	}

	return r, nil
}

// compilePrefix anchors pat at the start of the subject without also
// anchoring the end.
func compilePrefix(pat string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + pat + ")")
}

// Ignored reports whether any ignore pattern matches slug, testing in
// list order and short-circuiting on the first match.
func (r *Router) Ignored(slug string) bool {
	for _, re := range r.ignore {
		if re.MatchString(slug) {
			return true
		}
	}
	return false
}

// Token returns the token of the first rule whose pattern matches slug,
// in declaration order. The second result is false when no rule matches.
func (r *Router) Token(slug string) (string, bool) {
	for _, rule := range r.rules {
		if rule.pattern.MatchString(slug) {
			return rule.token, true
		}
	}
	return "", false
}
