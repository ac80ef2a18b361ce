package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_NoSentences(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize("  gold rate today  ", 2)
	require.NoError(t, err)
	assert.Equal(t, "gold rate today", out)
}

func TestSummarize_KeepsOriginalOrder(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "Equity funds carry market risk. The weather was pleasant. " +
		"Large cap equity funds reduce risk for equity investors. Lunch was served at noon."
	out, err := s.Summarize(text, 2)
	require.NoError(t, err)
	assert.Equal(t, "Equity funds carry market risk. Large cap equity funds reduce risk for equity investors.", out)
}

func TestSummarize_DefaultCount(t *testing.T) {
	s := NewFrequencySummarizer()
	text := strings.Repeat("Gold is a hedge. ", 6)
	out, err := s.Summarize(text, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxSentences, strings.Count(out, "."))
}

func TestSummarize_FewerSentencesThanRequested(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize("Only one sentence here.", 5)
	require.NoError(t, err)
	assert.Equal(t, "Only one sentence here.", out)
}
