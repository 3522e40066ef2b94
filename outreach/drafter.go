package outreach

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/poiesic/facultyhub/ai"
)

// GoalAutoDetect asks the model to infer the student's intent from the note.
const GoalAutoDetect = "AI_DETECT"

// DefaultDraftTimeout bounds a single generation call.
const DefaultDraftTimeout = 60 * time.Second

// salutationTitle matches a leading title already present in a scraped name.
var salutationTitle = regexp.MustCompile(`(?i)^(?:professor|prof|dr)(?:\.\s*|\s+)`)

// DraftRequest carries everything the email prompt is built from.
type DraftRequest struct {
	StudentName       string
	StudentYear       string
	StudentBackground string
	StudentInterest   string

	ProfessorName     string
	ProfessorEmail    string
	ProfessorInterest string

	// Goal is the purpose of the email, or GoalAutoDetect.
	Goal string
	// Note is optional extra context. With GoalAutoDetect it is the intent.
	Note string
}

// Validate reports the first missing required field.
func (r DraftRequest) Validate() error {
	if strings.TrimSpace(r.StudentName) == "" {
		return ErrMissingStudentName
	}
	if strings.TrimSpace(r.ProfessorName) == "" {
		return ErrMissingProfessorName
	}
	if r.autoDetect() && strings.TrimSpace(r.Note) == "" {
		return ErrMissingIntent
	}
	return nil
}

func (r DraftRequest) autoDetect() bool {
	return strings.TrimSpace(r.Goal) == GoalAutoDetect
}

// Drafter writes outreach emails with a text generator.
type Drafter struct {
	generator ai.Generator
	timeout   time.Duration
	logger    *slog.Logger
}

// DrafterOption configures a Drafter.
type DrafterOption func(*Drafter)

// WithDraftTimeout bounds each generation call. Zero disables the bound.
func WithDraftTimeout(timeout time.Duration) DrafterOption {
	return func(d *Drafter) {
		if timeout >= 0 {
			d.timeout = timeout
		}
	}
}

// WithDrafterLogger sets the logger.
func WithDrafterLogger(logger *slog.Logger) DrafterOption {
	return func(d *Drafter) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDrafter creates a drafter backed by generator.
func NewDrafter(generator ai.Generator, opts ...DrafterOption) (*Drafter, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	d := &Drafter{
		generator: generator,
		timeout:   DefaultDraftTimeout,
		logger:    slog.Default().With("component", "drafter"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Draft returns the generated email body, trimmed of surrounding whitespace.
func (d *Drafter) Draft(ctx context.Context, req DraftRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := d.generator.Generate(ctx, BuildPrompt(req))
	if err != nil {
		return "", fmt.Errorf("generate draft: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyDraft
	}

	d.logger.Debug("drafted email",
		"professor", req.ProfessorName,
		"autoDetect", req.autoDetect(),
		"chars", len(text),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return text, nil
}

// BuildPrompt renders the generation prompt for req.
func BuildPrompt(req DraftRequest) string {
	professor := salutationName(req.ProfessorName)

	var b strings.Builder
	b.WriteString("You are an academic email assistant. Write a polite, professional email from a student to a professor.\n\n")

	b.WriteString("Context:\n")
	fmt.Fprintf(&b, "- Student Name: %s\n", strings.TrimSpace(req.StudentName))
	fmt.Fprintf(&b, "- Student academic year: %s\n", orNone(req.StudentYear))
	fmt.Fprintf(&b, "- Student background: %s\n", orNone(req.StudentBackground))
	fmt.Fprintf(&b, "- Student research interests: %s\n", orNone(req.StudentInterest))
	fmt.Fprintf(&b, "- Professor Name: %s\n", professor)
	if interest := strings.TrimSpace(req.ProfessorInterest); interest != "" {
		fmt.Fprintf(&b, "- Professor research interests: %s\n", interest)
	}
	if req.autoDetect() {
		fmt.Fprintf(&b, "- Student's own description of why they are writing: %s\n", strings.TrimSpace(req.Note))
	} else {
		fmt.Fprintf(&b, "- Intent: %s\n", orNone(req.Goal))
		fmt.Fprintf(&b, "- Additional Info (optional): %s\n", orNone(req.Note))
	}

	b.WriteString("\nRules:\n")
	if req.autoDetect() {
		b.WriteString("- First work out the student's intent from their description, then write the email for that intent. Do not state the intent as a label.\n")
	}
	b.WriteString("- If the goal is about a minor issue (like submission mistake or confirmation), keep the email short and focused. Avoid research interests or background info.\n")
	b.WriteString("- If the goal is about collaboration (like research/project/internship), include a short self-introduction, interests, and a formal request.\n")
	fmt.Fprintf(&b, "- Always begin with \"Dear Prof. %s,\"\n", professor)
	b.WriteString("- Use clear and professional language.\n")
	b.WriteString("- End with a thank you and the student's name.\n\n")
	b.WriteString("Write the email accordingly.\n")

	return b.String()
}

// salutationName strips a leading title so the greeting does not repeat it.
func salutationName(name string) string {
	name = strings.TrimSpace(name)
	if stripped := strings.TrimSpace(salutationTitle.ReplaceAllString(name, "")); stripped != "" {
		return stripped
	}
	return name
}

func orNone(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return "None"
}
