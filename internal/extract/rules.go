// Package extract produces field candidates from normalized document text.
//
// Extraction is rule driven: an ordered registry of matchers runs against
// the folded (accent-stripped, upper-cased) text, and every rule that fires
// emits candidates tagged with the rule's confidence weight and registry
// priority. Rules never merge or deduplicate: competing and overlapping
// candidates for the same field are all kept, so the context resolver can
// judge which one to trust.
package extract

import (
	"regexp"
	"strings"

	"renamer/pkg/models"
)

// Match is one raw hit produced by a matcher: the candidate value and the
// byte span it was found at in the folded text.
type Match struct {
	Value string
	Span  models.Span
}

// Matcher locates candidate values in folded text. Implementations must be
// pure and safe for concurrent use: all patterns are compiled at registry
// construction.
type Matcher interface {
	Match(folded string) []Match
}

// Rule binds a matcher to the field it targets and the confidence weight
// reflecting the rule's specificity. A labeled match ("CONTRATO Nº: 123")
// carries more weight than a bare number found anywhere in the text.
type Rule struct {
	Name    string
	Field   models.Field
	Weight  float64
	Matcher Matcher
}

// wordPattern compiles a whole-word pattern for a dictionary token.
func wordPattern(token string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(token) + `\b`)
}

// regexMatcher emits the first match of a pattern. When the pattern has a
// capture group the group is the value, otherwise the whole match is.
// transform, when set, post-processes the value.
type regexMatcher struct {
	re        *regexp.Regexp
	transform func(string) string
}

func (m regexMatcher) Match(folded string) []Match {
	loc := m.re.FindStringSubmatchIndex(folded)
	if loc == nil {
		return nil
	}
	start, end := loc[0], loc[1]
	if len(loc) >= 4 && loc[2] >= 0 {
		start, end = loc[2], loc[3]
	}
	value := folded[start:end]
	if m.transform != nil {
		value = m.transform(value)
	}
	if value == "" {
		return nil
	}
	return []Match{{Value: value, Span: models.Span{Start: start, End: end}}}
}

// keywordSet matches dictionary tokens as whole words. Each distinct token
// present in the text yields one candidate at its first occurrence; remap
// rewrites token values (the rule set uses it to fold CPR into CPA).
type keywordSet struct {
	tokens   []string
	patterns []*regexp.Regexp
	remap    map[string]string
}

func newKeywordSet(tokens []string, remap map[string]string) keywordSet {
	patterns := make([]*regexp.Regexp, len(tokens))
	for i, token := range tokens {
		patterns[i] = wordPattern(token)
	}
	return keywordSet{tokens: tokens, patterns: patterns, remap: remap}
}

func (m keywordSet) Match(folded string) []Match {
	var out []Match
	for i, token := range m.tokens {
		loc := m.patterns[i].FindStringIndex(folded)
		if loc == nil {
			continue
		}
		value := token
		if mapped, ok := m.remap[token]; ok {
			value = mapped
		}
		out = append(out, Match{Value: value, Span: models.Span{Start: loc[0], End: loc[1]}})
	}
	return out
}

// classifier emits a fixed class value when any of its keywords appears.
// The span is the first keyword hit.
type classifier struct {
	patterns []*regexp.Regexp
	value    string
}

func newClassifier(tokens []string, value string) classifier {
	patterns := make([]*regexp.Regexp, len(tokens))
	for i, token := range tokens {
		patterns[i] = wordPattern(token)
	}
	return classifier{patterns: patterns, value: value}
}

func (m classifier) Match(folded string) []Match {
	for _, re := range m.patterns {
		if loc := re.FindStringIndex(folded); loc != nil {
			return []Match{{Value: m.value, Span: models.Span{Start: loc[0], End: loc[1]}}}
		}
	}
	return nil
}

// entityStopWords end the token run collected after an entity keyword, so
// "FAZENDA SANTA FE PARCEIRO JOAO" yields "SANTA FE" for the farm field
// instead of swallowing the next label.
var entityStopWords = map[string]bool{
	"PARCEIRO": true, "FAZENDA": true, "FUNDO": true, "SPE": true,
	"CONTRATO": true, "NUMERO": true, "TIPO": true, "TITULO": true,
	"DOCUMENTO": true, "EMPRESA": true, "PROPRIETARIO": true,
	"E": true, "DE": true, "DA": true, "DO": true, "PARA": true,
}

var entityToken = regexp.MustCompile(`^[A-Z][A-Z0-9&]*$`)

// entityMatcher captures a short run of name tokens following a keyword
// ("FAZENDA <name...>"). includeKeyword keeps the keyword in the value,
// which organization names like "EMPRESA XYZ" want.
type entityMatcher struct {
	keyword        string
	pattern        *regexp.Regexp
	includeKeyword bool
	maxTokens      int
}

func newEntityMatcher(keyword string, includeKeyword bool, maxTokens int) entityMatcher {
	return entityMatcher{
		keyword:        keyword,
		pattern:        wordPattern(keyword),
		includeKeyword: includeKeyword,
		maxTokens:      maxTokens,
	}
}

func (m entityMatcher) Match(folded string) []Match {
	loc := m.pattern.FindStringIndex(folded)
	if loc == nil {
		return nil
	}
	remainder := strings.TrimLeft(folded[loc[1]:], " :")
	limit := m.maxTokens
	if limit <= 0 {
		limit = 3
	}

	var collected []string
	cursor := len(folded) - len(remainder)
	end := cursor
	for _, token := range strings.Fields(remainder) {
		if entityStopWords[token] || !entityToken.MatchString(token) {
			break
		}
		idx := strings.Index(folded[end:], token)
		if idx < 0 {
			break
		}
		end += idx + len(token)
		collected = append(collected, token)
		if len(collected) >= limit {
			break
		}
	}
	if len(collected) == 0 {
		return nil
	}

	value := strings.Join(collected, " ")
	start := cursor
	if m.includeKeyword {
		value = m.keyword + " " + value
		start = loc[0]
	}
	return []Match{{Value: value, Span: models.Span{Start: start, End: end}}}
}
