package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeLabel prepares a scraped dt/th label for map lookup:
// whitespace and trailing colons (ASCII and full-width) are removed.
func NormalizeLabel(label string) string {
	label = whitespaceRegex.ReplaceAllString(label, "")
	label = strings.TrimRight(label, ":：")
	return label
}

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}
