// Package textquery parses the compact query notation naming content types and
// an access pattern, e.g. "page/12", "(entry,page)/search/5" or "event/latest/3".
// Parsing is purely syntactic; content type resolution happens later.
package textquery

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrNoMatch = errors.New("textquery does not match any rule")

// Rule identifies which grammar form matched.
type Rule string

const (
	RuleByID   Rule = "id"
	RuleSearch Rule = "search"
	RuleBySlug Rule = "slug"
	RuleLatest Rule = "latest"
	RuleFirst  Rule = "first"
	RuleRandom Rule = "random"
	RuleList   Rule = "list"
)

type Parsed struct {
	// Subject is the content type part as written, e.g. "page" or "(entry,page)".
	Subject string
	// Types holds the subject members, trimmed, in order of appearance.
	Types []string
	// List is set when the subject was a parenthesized list.
	List  bool
	Rule  Rule
	ID    string
	Slug  string
	Limit int
}

// Rules in precedence order, first match wins.
var (
	byIDRe    = regexp.MustCompile(`(?i)^/?([a-z0-9_-]+)/([0-9]+)$`)
	searchRe  = regexp.MustCompile(`(?i)^/?([a-z0-9_(),-]+)/search(/([0-9]+))?$`)
	bySlugRe  = regexp.MustCompile(`(?i)^/?([a-z0-9_-]+)/([a-z0-9_-]+)$`)
	latestRe  = regexp.MustCompile(`(?i)^/?([a-z0-9_-]+)/(latest|first)/([0-9]+)$`)
	randomRe  = regexp.MustCompile(`(?i)^/?([a-z0-9_-]+)/random/([0-9]+)$`)
	subjectRe = regexp.MustCompile(`(?i)^/?(\([a-z0-9_, -]+\)|[a-z0-9_-]+)$`)
)

func Parse(text string) (Parsed, error) {
	text = strings.TrimSpace(text)

	if m := byIDRe.FindStringSubmatch(text); m != nil {
		return newParsed(m[1], RuleByID, func(p *Parsed) { p.ID = m[2] }), nil
	}

	if m := searchRe.FindStringSubmatch(text); m != nil {
		return newParsed(m[1], RuleSearch, func(p *Parsed) { p.Limit = atoi(m[3]) }), nil
	}

	if m := bySlugRe.FindStringSubmatch(text); m != nil {
		return newParsed(m[1], RuleBySlug, func(p *Parsed) { p.Slug = m[2] }), nil
	}

	if m := latestRe.FindStringSubmatch(text); m != nil {
		rule := RuleFirst
		if strings.EqualFold(m[2], "latest") {
			rule = RuleLatest
		}
		return newParsed(m[1], rule, func(p *Parsed) { p.Limit = atoi(m[3]) }), nil
	}

	if m := randomRe.FindStringSubmatch(text); m != nil {
		return newParsed(m[1], RuleRandom, func(p *Parsed) { p.Limit = atoi(m[2]) }), nil
	}

	if m := subjectRe.FindStringSubmatch(text); m != nil {
		return newParsed(m[1], RuleList, nil), nil
	}

	return Parsed{}, fmt.Errorf("%w: %q", ErrNoMatch, text)
}

func newParsed(subject string, rule Rule, fill func(p *Parsed)) Parsed {
	p := Parsed{Subject: subject, Rule: rule}
	p.Types, p.List = splitSubject(subject)
	if fill != nil {
		fill(&p)
	}
	return p
}

// splitSubject turns "(a, b,c)" into [a b c] and "a" into [a].
func splitSubject(subject string) ([]string, bool) {
	if len(subject) < 2 || subject[0] != '(' || subject[len(subject)-1] != ')' {
		return []string{subject}, false
	}

	var types []string
	for _, member := range strings.Split(subject[1:len(subject)-1], ",") {
		if member = strings.TrimSpace(member); member != "" {
			types = append(types, member)
		}
	}
	return types, true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
