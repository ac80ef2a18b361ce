package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultMaxSentences is used when Summarize is asked for a non-positive count.
const DefaultMaxSentences = 3

// FrequencySummarizer picks the sentences whose words are most frequent in
// the whole text, with stopwords filtered out.
type FrequencySummarizer struct {
	tokenPattern    *regexp.Regexp
	sentencePattern *regexp.Regexp
	stopwords       map[string]struct{}
}

// NewFrequencySummarizer creates a frequency-based sentence ranker summarizer.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{
		tokenPattern:    regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		sentencePattern: regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
		stopwords:       defaultStopwords(),
	}
}

// Summarize returns up to maxSentences sentences of text, kept in their
// original order. Text without sentence punctuation is returned trimmed.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	sentences := s.sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}

	tokenized := make([][]string, len(sentences))
	freq := map[string]float64{}
	for i, sent := range sentences {
		tokenized[i] = s.contentTokens(sent)
		for _, tok := range tokenized[i] {
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, toks := range tokenized {
		total := 0.0
		for _, tok := range toks {
			total += freq[tok] / maxF
		}
		// Dampen long sentences.
		if len(toks) > 0 {
			total /= math.Sqrt(float64(len(toks)))
		}
		scores[i] = scored{i, total}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}

	selected := make([]int, maxSentences)
	for i := range selected {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, 0, len(selected))
	for _, idx := range selected {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " "), nil
}

func (s *FrequencySummarizer) contentTokens(text string) []string {
	raw := s.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := s.stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "should", "now", "has", "have", "had", "you", "your", "we", "our", "per",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
