package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitInterests(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"comma", "AI, Robotics", []string{"AI", "Robotics"}},
		{"pipe", "AI | Robotics", []string{"AI", "Robotics"}},
		{"bullets", "● AI • Robotics", []string{"AI", "Robotics"}},
		{"mojibake bullets", "‚óè AI ‚Ä¢ Robotics", []string{"AI", "Robotics"}},
		{"empty fragments", ", ,AI,,", []string{"AI"}},
		{"empty", "", []string{}},
		{"whitespace only", "   ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitInterests(tt.input))
		})
	}
}

func TestMergeInterests(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"overlap", "A, B", "B, C", "A, B, C"},
		{"unsorted input", "Vision", "AI, Robotics", "AI, Robotics, Vision"},
		{"one side empty", "", "B, A", "A, B"},
		{"case sensitive", "ai", "AI", "AI, ai"},
		{"both empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeInterests(tt.a, tt.b))
		})
	}
}

func TestMergeDepartments(t *testing.T) {
	assert.Equal(t, "CSE | EE", MergeDepartments("EE", "CSE"))
	assert.Equal(t, "CSE | EE", MergeDepartments("CSE | EE", "EE"))
	assert.Equal(t, "CSE | EE | ME", MergeDepartments("CSE | EE", " ME  | EE "))
	assert.Equal(t, "", MergeDepartments("", ""))
}

func TestSplitDepartments(t *testing.T) {
	assert.Equal(t, []string{"CSE", "EE"}, SplitDepartments("CSE |  | EE"))
	assert.Equal(t, []string{"Mechanical; Aerospace"}, SplitDepartments("Mechanical; Aerospace"))
	assert.Nil(t, SplitDepartments(""))
}

func TestNormalizeInterest(t *testing.T) {
	assert.Equal(t, NoInterestsSentinel, NormalizeInterest(""))
	assert.Equal(t, NoInterestsSentinel, NormalizeInterest("   "))
	assert.Equal(t, "AI, ML", NormalizeInterest(`  AI\, ML `))
}
