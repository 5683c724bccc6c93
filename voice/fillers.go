package voice

import "strings"

// fillerTokens is the fixed English filler-word list spec §4.6 names
// verbatim. "you know" is a two-word phrase and is matched before the
// single-word tokens so it isn't double-counted via "know" (which is not
// itself a filler).
var fillerTokens = []string{
	"you know",
	"um",
	"uh",
	"like",
	"so",
	"actually",
	"basically",
	"literally",
	"right",
}

// countFillers returns the total filler-token occurrences in transcript,
// matched case-insensitively with surrounding punctuation stripped.
func countFillers(transcript string) int {
	raw := strings.Fields(strings.ToLower(transcript))
	words := make([]string, len(raw))
	for i, w := range raw {
		words[i] = strings.Trim(w, ".,!?;:\"'")
	}

	count := 0
	consumed := make([]bool, len(words))
	for i := 0; i+1 < len(words); i++ {
		if words[i] == "you" && words[i+1] == "know" {
			count++
			consumed[i] = true
			consumed[i+1] = true
		}
	}

	singleTokens := fillerTokens[1:] // everything but "you know"
	for i, w := range words {
		if consumed[i] {
			continue
		}
		for _, f := range singleTokens {
			if w == f {
				count++
				break
			}
		}
	}

	return count
}
