package outreach

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/facultyhub/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftRequest() DraftRequest {
	return DraftRequest{
		StudentName:       "Asha",
		StudentYear:       "3rd Year",
		StudentBackground: "CGPA 8.9, built a SLAM prototype",
		StudentInterest:   "robot perception",
		ProfessorName:     "Dr. Rao",
		ProfessorInterest: "AI, Robotics",
		Goal:              "Research Internship",
	}
}

func TestNewDrafter(t *testing.T) {
	_, err := NewDrafter(nil)
	assert.ErrorIs(t, err, ErrGeneratorRequired)

	d, err := NewDrafter(mock.NewMockGenerator(), WithDraftTimeout(0), WithDrafterLogger(nil))
	require.NoError(t, err)
	assert.Zero(t, d.timeout)
	assert.NotNil(t, d.logger)
}

func TestDraftRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*DraftRequest)
		wantErr error
	}{
		{"valid", func(*DraftRequest) {}, nil},
		{"missing student", func(r *DraftRequest) { r.StudentName = "  " }, ErrMissingStudentName},
		{"missing professor", func(r *DraftRequest) { r.ProfessorName = "" }, ErrMissingProfessorName},
		{"detect without note", func(r *DraftRequest) { r.Goal = GoalAutoDetect }, ErrMissingIntent},
		{"detect with note", func(r *DraftRequest) {
			r.Goal = GoalAutoDetect
			r.Note = "I submitted the wrong file for assignment 2"
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := draftRequest()
			tt.modify(&req)
			err := req.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(draftRequest())

	assert.Contains(t, prompt, "- Student Name: Asha\n")
	assert.Contains(t, prompt, "- Student academic year: 3rd Year\n")
	assert.Contains(t, prompt, "- Student research interests: robot perception\n")
	assert.Contains(t, prompt, "- Professor Name: Rao\n")
	assert.Contains(t, prompt, "- Intent: Research Internship\n")
	assert.Contains(t, prompt, "- Additional Info (optional): None\n")
	assert.Contains(t, prompt, `Always begin with "Dear Prof. Rao,"`)
	assert.NotContains(t, prompt, "work out the student's intent")
}

func TestBuildPrompt_AutoDetect(t *testing.T) {
	req := draftRequest()
	req.Goal = GoalAutoDetect
	req.Note = "wrong file submitted"

	prompt := BuildPrompt(req)
	assert.Contains(t, prompt, "description of why they are writing: wrong file submitted")
	assert.Contains(t, prompt, "work out the student's intent")
	assert.NotContains(t, prompt, GoalAutoDetect)
	assert.NotContains(t, prompt, "- Intent:")
}

func TestSalutationName(t *testing.T) {
	tests := map[string]string{
		"Dr. Rao":           "Rao",
		"prof Meera Iyer":   "Meera Iyer",
		"Professor Sen":     "Sen",
		"Draper":            "Draper",
		"  Kavita Joshi  ":  "Kavita Joshi",
		"Dr.":               "Dr.",
		"Prof.Ananth Kumar": "Ananth Kumar",
	}
	for in, want := range tests {
		assert.Equal(t, want, salutationName(in), in)
	}
}

func TestDraft(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return "\n  Dear Prof. Rao,\n\nThank you.\nAsha  \n", nil
	}

	d, err := NewDrafter(gen, WithDraftTimeout(time.Second))
	require.NoError(t, err)

	body, err := d.Draft(context.Background(), draftRequest())
	require.NoError(t, err)
	assert.Equal(t, "Dear Prof. Rao,\n\nThank you.\nAsha", body)
	assert.Equal(t, 1, gen.CallCount())
	assert.True(t, strings.HasPrefix(gen.LastPrompt(), "You are an academic email assistant."))
}

func TestDraft_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid request skips generator", func(t *testing.T) {
		gen := mock.NewMockGenerator()
		d, err := NewDrafter(gen)
		require.NoError(t, err)

		req := draftRequest()
		req.ProfessorName = ""
		_, err = d.Draft(ctx, req)
		assert.ErrorIs(t, err, ErrMissingProfessorName)
		assert.Zero(t, gen.CallCount())
	})

	t.Run("generator error", func(t *testing.T) {
		boom := errors.New("quota exceeded")
		gen := mock.NewMockGenerator()
		gen.GenerateFunc = func(context.Context, string) (string, error) { return "", boom }
		d, err := NewDrafter(gen)
		require.NoError(t, err)

		_, err = d.Draft(ctx, draftRequest())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("blank output", func(t *testing.T) {
		gen := mock.NewMockGenerator()
		gen.GenerateFunc = func(context.Context, string) (string, error) { return " \n\t", nil }
		d, err := NewDrafter(gen)
		require.NoError(t, err)

		_, err = d.Draft(ctx, draftRequest())
		assert.ErrorIs(t, err, ErrEmptyDraft)
	})
}
