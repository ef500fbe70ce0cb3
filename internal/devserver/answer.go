package devserver

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/KaramelBytes/docchat-cli/internal/api"
	"github.com/KaramelBytes/docchat-cli/internal/utils"
)

// historyTurns is how many previous exchanges inform an answer.
const historyTurns = 2

const noAnswer = "I could not find anything about that in the document."

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "was": true, "what": true,
	"who": true, "how": true, "why": true, "does": true, "did": true, "this": true,
	"that": true, "with": true, "about": true, "from": true, "into": true, "is": true,
	"of": true, "to": true, "in": true, "a": true, "an": true, "it": true, "on": true,
	"be": true, "do": true, "me": true, "tell": true, "document": true,
}

func words(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Answer picks the document line that best overlaps the question. Words from
// the last two history questions count at half weight.
func Answer(text string, history []api.HistoryEntry, question string) string {
	weights := map[string]float64{}
	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}
	for _, h := range history {
		for _, w := range words(h.Question) {
			if weights[w] < 0.5 {
				weights[w] = 0.5
			}
		}
	}
	for _, w := range words(question) {
		weights[w] = 1
	}
	if len(weights) == 0 {
		return noAnswer
	}

	best, bestScore := "", 0.0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seen := map[string]bool{}
		score := 0.0
		for _, w := range words(line) {
			if wt, ok := weights[w]; ok && !seen[w] {
				seen[w] = true
				score += wt
			}
		}
		// Only question words can select a line; history alone only breaks ties.
		if score > bestScore && hasQuestionWord(seen, weights) {
			best, bestScore = line, score
		}
	}
	if best == "" {
		return noAnswer
	}
	return fmt.Sprintf("From the document: %s", utils.TruncateRunes(best, 500))
}

func hasQuestionWord(seen map[string]bool, weights map[string]float64) bool {
	for w := range seen {
		if weights[w] == 1 {
			return true
		}
	}
	return false
}
