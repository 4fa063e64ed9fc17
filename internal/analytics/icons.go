package analytics

import "strings"

// FallbackIcon is used when no rule matches a category.
const FallbackIcon = "currency"

type MatchMode int

const (
	MatchExact MatchMode = iota
	MatchContains
)

// IconRule maps a category to an icon tag. Patterns are compared
// case-insensitively.
type IconRule struct {
	Pattern string
	Match   MatchMode
	Icon    string
}

// DefaultIconRules is evaluated top to bottom; the first match wins.
var DefaultIconRules = []IconRule{
	{Pattern: "Rent/PG", Match: MatchExact, Icon: "home"},
	{Pattern: "Salary/Stipend", Match: MatchExact, Icon: "wallet"},
	{Pattern: "Pocket Money", Match: MatchExact, Icon: "wallet"},
	{Pattern: "Freelance", Match: MatchExact, Icon: "credit-card"},
	{Pattern: "coffee", Match: MatchContains, Icon: "coffee"},
	{Pattern: "food", Match: MatchContains, Icon: "utensils"},
	{Pattern: "shopping", Match: MatchContains, Icon: "shopping-bag"},
	{Pattern: "mobile", Match: MatchContains, Icon: "smartphone"},
	{Pattern: "internet", Match: MatchContains, Icon: "smartphone"},
	{Pattern: "education", Match: MatchContains, Icon: "book-open"},
	{Pattern: "scholarship", Match: MatchContains, Icon: "book-open"},
	{Pattern: "entertainment", Match: MatchContains, Icon: "music"},
	{Pattern: "subscription", Match: MatchContains, Icon: "music"},
	{Pattern: "transport", Match: MatchContains, Icon: "bus"},
	{Pattern: "health", Match: MatchContains, Icon: "heart-pulse"},
	{Pattern: "gift", Match: MatchContains, Icon: "gift"},
	{Pattern: "rent", Match: MatchContains, Icon: "home"},
}

func (r IconRule) matches(category string) bool {
	switch r.Match {
	case MatchExact:
		return strings.EqualFold(category, r.Pattern)
	case MatchContains:
		return strings.Contains(strings.ToLower(category), strings.ToLower(r.Pattern))
	}
	return false
}

// IconFor returns the icon of the first rule matching category.
func IconFor(category string, rules []IconRule) string {
	for _, r := range rules {
		if r.matches(category) {
			return r.Icon
		}
	}
	return FallbackIcon
}
