package roles

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule rewrites a single role name. When done is true the result is final and
// later rules are skipped.
type Rule struct {
	Name  string
	Apply func(name string) (out string, done bool)
}

// DefaultOverrides maps lowercase role names to their fixed spelling.
var DefaultOverrides = map[string]string{
	"dj":         "DJ",
	"cgi":        "CGI",
	"dj mix":     "DJ Mix",
	"cgi artist": "CGI Artist",
	"vibes":      "Vibraphone",
	"remiz":      "Remix",
}

// DefaultRules returns the standard rule chain using the given override table.
func DefaultRules(overrides map[string]string) []Rule {
	return []Rule{
		AcronymRule(),
		HyphenSuffixRule(),
		OverrideRule(overrides),
		TitleCaseRule(),
		AfterHyphenRule(),
		AfterApostropheRule(),
		ContractionRule(),
		AfterAmpersandRule(),
		ParentheticalRule(),
	}
}

// isAllUpper reports whether s has at least one letter and no lowercase letters.
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// AcronymRule passes all-uppercase input through verbatim ("MC", "DAW").
func AcronymRule() Rule {
	return Rule{Name: "acronym", Apply: func(name string) (string, bool) {
		if isAllUpper(name) {
			return name, true
		}
		return name, false
	}}
}

var hyphenSuffix = regexp.MustCompile(`(?i)-(by|to|at|with)\b`)

// HyphenSuffixRule turns "-By", "-To", "-At" and "-With" into space separated words.
func HyphenSuffixRule() Rule {
	return Rule{Name: "hyphen-suffix", Apply: func(name string) (string, bool) {
		return hyphenSuffix.ReplaceAllString(name, " $1"), false
	}}
}

// OverrideRule replaces names found (case-insensitively) in the table.
func OverrideRule(overrides map[string]string) Rule {
	table := make(map[string]string, len(overrides))
	for k, v := range overrides {
		table[strings.ToLower(k)] = v
	}
	return Rule{Name: "override", Apply: func(name string) (string, bool) {
		if v, ok := table[strings.ToLower(name)]; ok {
			return v, true
		}
		return name, false
	}}
}

// TitleCaseRule upper-cases the first rune of every whitespace separated word
// and lower-cases the rest. Words already in all caps are kept.
func TitleCaseRule() Rule {
	return Rule{Name: "title-case", Apply: func(name string) (string, bool) {
		words := strings.Fields(name)
		for i, w := range words {
			if isAllUpper(w) {
				continue
			}
			first, size := utf8.DecodeRuneInString(w)
			words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
		}
		return strings.Join(words, " "), false
	}}
}

func upperGroup(re *regexp.Regexp, prefixLen int) func(string) string {
	return func(s string) string {
		return re.ReplaceAllStringFunc(s, func(m string) string {
			return m[:prefixLen] + strings.ToUpper(m[prefixLen:])
		})
	}
}

var afterHyphen = regexp.MustCompile(`-\p{Ll}`)

// AfterHyphenRule capitalizes the letter after a hyphen ("Co-producer" -> "Co-Producer").
func AfterHyphenRule() Rule {
	fix := upperGroup(afterHyphen, 1)
	return Rule{Name: "after-hyphen", Apply: func(name string) (string, bool) {
		return fix(name), false
	}}
}

var contraction = regexp.MustCompile(`(\p{L})'(S|T|D|M|Ll|LL|Re|RE|Ve|VE)\b`)

// ContractionRule keeps possessive and contraction suffixes lowercase
// ("Children'S" -> "Children's").
func ContractionRule() Rule {
	return Rule{Name: "contraction", Apply: func(name string) (string, bool) {
		return contraction.ReplaceAllStringFunc(name, func(m string) string {
			i := strings.IndexByte(m, '\'')
			return m[:i+1] + strings.ToLower(m[i+1:])
		}), false
	}}
}

var afterApostrophe = regexp.MustCompile(`(^|[\s(])(\p{L}?)'\p{Ll}`)

// AfterApostropheRule capitalizes the letter after a leading apostrophe or a
// single-letter prefix ("'n'" -> "'N'", "O'neil" -> "O'Neil").
func AfterApostropheRule() Rule {
	return Rule{Name: "after-apostrophe", Apply: func(name string) (string, bool) {
		return afterApostrophe.ReplaceAllStringFunc(name, func(m string) string {
			last, size := utf8.DecodeLastRuneInString(m)
			return m[:len(m)-size] + string(unicode.ToUpper(last))
		}), false
	}}
}

var afterAmpersand = regexp.MustCompile(`&\p{Ll}`)

// AfterAmpersandRule capitalizes the letter after an ampersand ("A&r" -> "A&R").
func AfterAmpersandRule() Rule {
	fix := upperGroup(afterAmpersand, 1)
	return Rule{Name: "after-ampersand", Apply: func(name string) (string, bool) {
		return fix(name), false
	}}
}

var parenthetical = regexp.MustCompile(`\(\p{Ll}\p{L}+`)

// ParentheticalRule capitalizes parenthetical words of two or more letters
// ("Tar (lute)" -> "Tar (Lute)"); "(p)" and "(c)" are left alone.
func ParentheticalRule() Rule {
	return Rule{Name: "parenthetical", Apply: func(name string) (string, bool) {
		return parenthetical.ReplaceAllStringFunc(name, func(m string) string {
			first, size := utf8.DecodeRuneInString(m[1:])
			return "(" + string(unicode.ToUpper(first)) + m[1+size:]
		}), false
	}}
}
