package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeAndFilter(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"commas and case", "Machine Learning, Computer Vision", []string{"machine", "learning", "computer", "vision"}},
		{"stop words", "Research interests in the theory of Graphs", []string{"theory", "graphs"}},
		{"bullets and pipes", "AI ● Robotics | Control", []string{"ai", "robotics", "control"}},
		{"punctuation", "(Optics).", []string{"optics"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenizeAndFilter(tt.text))
		})
	}
}

func TestContainsAllQueryWords(t *testing.T) {
	doc := "Vision Systems, Learning Theory"

	assert.True(t, containsAllQueryWords(doc, "learning vision"))
	assert.True(t, containsAllQueryWords(doc, "the theory of learning"))
	assert.False(t, containsAllQueryWords(doc, "deep learning"))
	assert.False(t, containsAllQueryWords(doc, "the of"), "stop-word-only query matches nothing")
}
