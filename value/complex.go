package value

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	colorToken  = regexp.MustCompile(`#[0-9a-fA-F]{3,8}\b|(?:rgba?|hsla?)\([^)]*\)`)
	numberToken = regexp.MustCompile(`-?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
)

type token struct {
	isColor bool
	num     float64
	color   Color
}

// complexValue is a string split into literal parts and animatable tokens.
// len(literals) == len(tokens)+1.
type complexValue struct {
	literals []string
	tokens   []token
}

func parseComplex(s string) complexValue {
	var cv complexValue
	rest := s
	for {
		loc, tok, ok := nextToken(rest)
		if !ok {
			cv.literals = append(cv.literals, rest)
			return cv
		}
		cv.literals = append(cv.literals, rest[:loc[0]])
		cv.tokens = append(cv.tokens, tok)
		rest = rest[loc[1]:]
	}
}

// nextToken finds the earliest colour or number in s. Colours win ties so
// the digits inside rgb() are not read as numbers.
func nextToken(s string) ([]int, token, bool) {
	cloc := colorToken.FindStringIndex(s)
	nloc := numberToken.FindStringIndex(s)
	if cloc != nil && (nloc == nil || cloc[0] <= nloc[0]) {
		if c, ok := ParseColor(s[cloc[0]:cloc[1]]); ok {
			return cloc, token{isColor: true, color: c}, true
		}
	}
	if nloc == nil {
		return nil, token{}, false
	}
	n, err := strconv.ParseFloat(s[nloc[0]:nloc[1]], 64)
	if err != nil {
		return nil, token{}, false
	}
	return nloc, token{num: n}, true
}

func (cv complexValue) format(tokens []token) string {
	var b strings.Builder
	for i, lit := range cv.literals {
		b.WriteString(lit)
		if i < len(tokens) {
			t := tokens[i]
			if t.isColor {
				b.WriteString(t.color.String())
			} else {
				b.WriteString(formatNumber(t.num))
			}
		}
	}
	return b.String()
}

// matches reports whether two complex values share a template.
func (cv complexValue) matches(o complexValue) bool {
	if len(cv.tokens) != len(o.tokens) {
		return false
	}
	for i := range cv.tokens {
		if cv.tokens[i].isColor != o.tokens[i].isColor {
			return false
		}
	}
	for i := range cv.literals {
		if strings.TrimSpace(cv.literals[i]) != strings.TrimSpace(o.literals[i]) {
			return false
		}
	}
	return true
}

// Animatable reports whether v can be interpolated: numbers always, strings
// when they contain at least one number or colour.
func Animatable(v Value) bool {
	switch v.kind {
	case KindNumber:
		return true
	case KindString:
		if strings.HasPrefix(v.str, "url(") {
			return false
		}
		return len(parseComplex(v.str).tokens) > 0
	}
	return false
}

// Zero returns the animatable "none" form of v: 0 for numbers, and for
// strings the same template with every number zeroed and every colour
// transparent.
func Zero(v Value) Value {
	if v.kind != KindString {
		return Number(0)
	}
	cv := parseComplex(v.str)
	zeroed := make([]token, len(cv.tokens))
	for i, t := range cv.tokens {
		zeroed[i] = token{isColor: t.isColor}
	}
	return String(cv.format(zeroed))
}
