package resolver

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbind/pkg/path"
	"github.com/goliatone/go-formbind/pkg/schema"
)

var wordSeparators = regexp.MustCompile(`[_\-\s]+`)

// Label returns the display label for p: the node title when set, otherwise
// the last name segment split on separators and camelCase boundaries
// ("zipCode" -> "Zip Code"). Index segments read "Item N", counting from 1.
func Label(p path.Path, node *schema.Node) string {
	if node != nil && strings.TrimSpace(node.Title) != "" {
		return strings.TrimSpace(node.Title)
	}
	last, ok := p.Last()
	if !ok {
		return ""
	}
	if idx, ok := last.Position(); ok {
		return "Item " + strconv.Itoa(idx+1)
	}
	return humanize(last.Key())
}

func humanize(name string) string {
	var words []string
	for _, word := range wordSeparators.Split(name, -1) {
		if word == "" {
			continue
		}
		for _, part := range strings.Fields(splitCamel(word)) {
			words = append(words, titleCase(part))
		}
	}
	return strings.Join(words, " ")
}

func splitCamel(input string) string {
	var out strings.Builder
	runes := []rune(input)
	for i, r := range runes {
		if i > 0 && isBoundary(runes[i-1], r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

func isBoundary(prev, r rune) bool {
	return (isLower(prev) && isUpper(r)) || (isLetter(prev) && isDigit(r)) || (isDigit(prev) && isLetter(r))
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

func titleCase(word string) string {
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
