package outreach

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/poiesic/facultyhub/core"
	"github.com/poiesic/facultyhub/storage"
)

// Log records outreach emails and tracks which ones need a follow-up.
type Log struct {
	repo    storage.OutreachRepository
	planner *Planner
	now     func() time.Time
	logger  *slog.Logger
}

// LogOption configures a Log.
type LogOption func(*Log)

// WithPlanner sets the follow-up planner. Default uses DefaultFollowupDelay.
func WithPlanner(planner *Planner) LogOption {
	return func(l *Log) {
		if planner != nil {
			l.planner = planner
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) LogOption {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogLogger sets the logger.
func WithLogLogger(logger *slog.Logger) LogOption {
	return func(l *Log) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLog creates a log over repo.
func NewLog(repo storage.OutreachRepository, opts ...LogOption) (*Log, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	l := &Log{
		repo:    repo,
		planner: &Planner{delay: DefaultFollowupDelay},
		now:     time.Now,
		logger:  slog.Default().With("component", "outreach-log"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Record stores a drafted email as sent now, with a planned follow-up.
func (l *Log) Record(ctx context.Context, req DraftRequest, email string) (*core.Interaction, error) {
	sent := l.now().UTC()
	goal := strings.TrimSpace(req.Goal)
	if goal == GoalAutoDetect {
		goal = strings.TrimSpace(req.Note)
	}

	interaction := &core.Interaction{
		StudentName:       strings.TrimSpace(req.StudentName),
		ProfessorName:     strings.TrimSpace(req.ProfessorName),
		ProfessorEmail:    strings.TrimSpace(req.ProfessorEmail),
		ProfessorInterest: strings.TrimSpace(req.ProfessorInterest),
		Goal:              goal,
		ExtraNote:         strings.TrimSpace(req.Note),
		EmailText:         email,
		SentAt:            sent,
		FollowupAt:        l.planner.PlanFollowup(sent),
	}

	added, err := l.repo.AddInteractions(ctx, interaction)
	if err != nil {
		return nil, fmt.Errorf("record interaction: %w", err)
	}
	l.logger.Info("recorded outreach",
		"id", added[0].Id,
		"professor", interaction.ProfessorName,
		"followupAt", interaction.FollowupAt)
	return added[0], nil
}

// List returns every recorded interaction, oldest first.
func (l *Log) List(ctx context.Context) ([]*core.Interaction, error) {
	return l.repo.ListInteractions(ctx)
}

// Due returns unanswered interactions whose follow-up time has passed.
func (l *Log) Due(ctx context.Context) ([]*core.Interaction, error) {
	return l.repo.DueFollowups(ctx, l.now())
}

// MarkResponded records that the professor replied. It is a no-op for an
// interaction already marked.
func (l *Log) MarkResponded(ctx context.Context, id core.ID) (*core.Interaction, error) {
	interaction, err := l.repo.GetInteraction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get interaction %d: %w", id, err)
	}
	if interaction.Responded {
		return interaction, nil
	}

	interaction.Responded = true
	updated, err := l.repo.UpdateInteractions(ctx, interaction)
	if err != nil {
		return nil, fmt.Errorf("update interaction %d: %w", id, err)
	}
	l.logger.Info("marked responded", "id", id, "professor", interaction.ProfessorName)
	return updated[0], nil
}

// BestSendTime reports when answered emails were most often sent.
func (l *Log) BestSendTime(ctx context.Context, loc *time.Location) (ReplyPattern, bool, error) {
	all, err := l.repo.ListInteractions(ctx)
	if err != nil {
		return ReplyPattern{}, false, err
	}
	pattern, ok := BestSendTime(all, loc)
	return pattern, ok, nil
}

// exportedInteraction is the JSON shape of an exported interaction.
type exportedInteraction struct {
	ID                core.ID    `json:"id"`
	StudentName       string     `json:"student_name"`
	ProfessorName     string     `json:"professor_name"`
	ProfessorInterest string     `json:"professor_interest"`
	ProfessorEmail    string     `json:"professor_email"`
	Goal              string     `json:"goal"`
	ExtraNote         string     `json:"extra_note"`
	EmailText         string     `json:"email_text"`
	SentTime          time.Time  `json:"sent_time"`
	FollowupTime      *time.Time `json:"followup_time,omitempty"`
	Responded         bool       `json:"responded"`
}

// Export writes every interaction to w as an indented JSON array.
func (l *Log) Export(ctx context.Context, w io.Writer) error {
	all, err := l.repo.ListInteractions(ctx)
	if err != nil {
		return err
	}

	out := make([]exportedInteraction, len(all))
	for n, i := range all {
		out[n] = exportedInteraction{
			ID:                i.Id,
			StudentName:       i.StudentName,
			ProfessorName:     i.ProfessorName,
			ProfessorInterest: i.ProfessorInterest,
			ProfessorEmail:    i.ProfessorEmail,
			Goal:              i.Goal,
			ExtraNote:         i.ExtraNote,
			EmailText:         i.EmailText,
			SentTime:          i.SentAt,
			Responded:         i.Responded,
		}
		if !i.FollowupAt.IsZero() {
			followup := i.FollowupAt
			out[n].FollowupTime = &followup
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode interactions: %w", err)
	}
	return nil
}
