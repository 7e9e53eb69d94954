package scoring

import "strings"

// strippedSuffixes are the endings removed by StripSuffix. When several
// match, the longest wins ("happiness" loses "ness", not "s").
var strippedSuffixes = []string{
	"tion", "sion", "ness", "ment", "able", "ible", "less",
	"ing", "est", "ful",
	"ed", "er", "ly", "'s",
	"s",
}

// StripSuffix removes one common English inflectional or derivational
// ending from an already folded answer. It is a heuristic and can map
// unrelated words to the same stem ("ring" and "r"). A strip that would
// leave nothing is not applied.
func StripSuffix(s string) string {
	best := ""
	for _, suf := range strippedSuffixes {
		if len(suf) > len(best) && strings.HasSuffix(s, suf) && len(s) > len(suf) {
			best = suf
		}
	}
	return s[:len(s)-len(best)]
}
