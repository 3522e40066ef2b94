package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/poiesic/facultyhub"
	"github.com/poiesic/facultyhub/config"
	"github.com/poiesic/facultyhub/core"
	"github.com/poiesic/facultyhub/ingestion"
	"github.com/poiesic/facultyhub/outreach"
	"github.com/poiesic/facultyhub/search"
	"github.com/urfave/cli/v2"
)

// loadConfig reads the config named by --config, or the default locations,
// and applies command line overrides.
func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if dir := c.String("sources"); dir != "" {
		cfg.Sources.Dir = dir
	}
	if provider := c.String("provider"); provider != "" {
		cfg.AI.Provider = provider
	}
	return cfg, nil
}

func openHub(c *cli.Context) (*facultyhub.Hub, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return facultyhub.New(c.Context,
		facultyhub.WithConfig(cfg),
		facultyhub.WithProgress(c.App.ErrWriter),
	)
}

func ingestCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	pipeline, err := ingestion.NewPipeline(
		ingestion.WithWorkers(cfg.Sources.Workers),
		ingestion.WithCollegeTable(cfg.Sources.Colleges),
	)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	records, err := pipeline.Records(c.Context, cfg.Sources.Dir)
	if err != nil {
		return err
	}

	w := c.App.Writer
	perCollege := make(map[string]int)
	for i := range records {
		college := records[i].CollegeName
		if college == "" {
			college = "(unknown)"
		}
		perCollege[college]++
	}
	for _, college := range search.Colleges(records) {
		fmt.Fprintf(w, "%-40s %5d\n", college, perCollege[college])
	}
	if n := perCollege["(unknown)"]; n > 0 {
		fmt.Fprintf(w, "%-40s %5d\n", "(unknown)", n)
	}
	fmt.Fprintf(w, "%-40s %5d\n", "total", len(records))

	if out := c.String("out"); out != "" {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("encode records: %w", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(w, "wrote %d records to %s\n", len(records), out)
	}
	return nil
}

func indexCommand(c *cli.Context) error {
	hub, err := openHub(c)
	if err != nil {
		return err
	}
	defer hub.Close()

	if err := hub.Reload(c.Context, c.Bool("force")); err != nil {
		return err
	}
	manifest, err := hub.IndexManifest(c.Context)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "index: %d documents, embedder %s, built %s\n",
		manifest.Documents, manifest.Embedder, manifest.BuiltAt.Local().Format(time.DateTime))
	return nil
}

func recommendCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return errors.New("a query is required")
	}

	hub, err := openHub(c)
	if err != nil {
		return err
	}
	defer hub.Close()

	topK := c.Int("top-k")
	if topK <= 0 {
		topK = hub.Config().Retrieval.TopK
	}

	records := hub.Retrieve(c.Context, query, topK)
	if len(records) == 0 {
		fmt.Fprintln(c.App.Writer, "no matching faculty")
		return nil
	}
	printRecords(c.App.Writer, records)
	return nil
}

func searchCommand(c *cli.Context) error {
	hub, err := openHub(c)
	if err != nil {
		return err
	}
	defer hub.Close()

	w := c.App.Writer
	if c.Bool("list-departments") {
		records, err := hub.Records(c.Context)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "Departments:")
		for _, d := range search.Departments(records) {
			fmt.Fprintf(w, "  %s\n", d)
		}
		fmt.Fprintln(w, "Colleges:")
		for _, col := range search.Colleges(records) {
			fmt.Fprintf(w, "  %s\n", col)
		}
		return nil
	}

	records, err := hub.Filter(c.Context, search.FilterCriteria{
		Department: c.String("department"),
		Name:       c.String("name"),
		Interest:   c.String("interest"),
		College:    c.String("college"),
		Limit:      c.Int("limit"),
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "no matching faculty")
		return nil
	}
	printRecords(w, records)
	return nil
}

func draftCommand(c *cli.Context) error {
	hub, err := openHub(c)
	if err != nil {
		return err
	}
	defer hub.Close()

	req := outreach.DraftRequest{
		StudentName:       c.String("student"),
		StudentYear:       c.String("year"),
		StudentBackground: c.String("background"),
		StudentInterest:   c.String("interest"),
		ProfessorName:     c.String("professor"),
		ProfessorEmail:    c.String("professor-email"),
		Goal:              goal(c),
		Note:              c.String("note"),
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if !hub.CanDraft() {
		return facultyhub.ErrNoGenerator
	}
	fillProfessor(c, hub, &req)

	w := c.App.Writer
	if c.Bool("dry-run") {
		email, err := hub.Draft(c.Context, req)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, email)
		return nil
	}

	composed, err := hub.Compose(c.Context, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Subject: %s\n\n%s\n\n", composed.Subject, composed.Email)
	if req.ProfessorEmail != "" {
		fmt.Fprintf(w, "Open in mail client: %s\n", composed.MailtoLink)
		fmt.Fprintf(w, "Open in Gmail:       %s\n", composed.GmailLink)
	}
	fmt.Fprintf(w, "Suggested send time: %s\n", composed.SendAt.Format("Mon 2 Jan 15:04"))
	fmt.Fprintf(w, "Recorded as #%d, follow up after %s\n",
		composed.Interaction.Id, composed.Interaction.FollowupAt.Local().Format(time.DateOnly))
	return nil
}

// fillProfessor completes the professor's email and interests from the
// corpus when exactly one record matches the name.
func fillProfessor(c *cli.Context, hub *facultyhub.Hub, req *outreach.DraftRequest) {
	if req.ProfessorEmail != "" && req.ProfessorInterest != "" {
		return
	}
	matches, err := hub.Filter(c.Context, search.FilterCriteria{Name: req.ProfessorName, Limit: 2})
	if err != nil || len(matches) != 1 {
		return
	}
	if req.ProfessorEmail == "" {
		req.ProfessorEmail = matches[0].Email
	}
	if req.ProfessorInterest == "" {
		req.ProfessorInterest = matches[0].ResearchInterests
	}
}

func followupsCommand(c *cli.Context) error {
	hub, err := openHub(c)
	if err != nil {
		return err
	}
	defer hub.Close()

	log := hub.Outreach()
	w := c.App.Writer

	if id := c.Uint64("mark-responded"); id != 0 {
		interaction, err := log.MarkResponded(c.Context, core.ID(id))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "marked #%d (%s) as responded\n", interaction.Id, interaction.ProfessorName)
		return nil
	}

	if path := c.String("export"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := log.Export(c.Context, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(w, "exported outreach log to %s\n", path)
		return nil
	}

	if c.Bool("best-time") {
		pattern, ok, err := log.BestSendTime(c.Context, time.Local)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(w, "no answered emails yet")
			return nil
		}
		fmt.Fprintf(w, "answered emails were most often sent on %s around %02d:00 (%d replies)\n",
			pattern.Weekday, pattern.Hour, pattern.Replies)
		return nil
	}

	var interactions []*core.Interaction
	if c.Bool("all") {
		interactions, err = log.List(c.Context)
	} else {
		interactions, err = log.Due(c.Context)
	}
	if err != nil {
		return err
	}
	if len(interactions) == 0 {
		fmt.Fprintln(w, "nothing to follow up")
		return nil
	}
	printInteractions(w, interactions)
	return nil
}

func remindCommand(c *cli.Context) error {
	hub, err := openHub(c)
	if err != nil {
		return err
	}
	defer hub.Close()

	w := c.App.Writer
	notify := outreach.WithNotifier(func(_ context.Context, due []*core.Interaction) {
		fmt.Fprintf(w, "%s: %d follow-up(s) due\n", time.Now().Format(time.DateTime), len(due))
		printInteractions(w, due)
	})

	var reminder *outreach.Reminder
	if every := c.Duration("every"); every > 0 {
		reminder, err = outreach.NewReminder(hub.Outreach(), every, notify)
	} else {
		reminder, err = hub.NewReminder(notify)
	}
	if err != nil {
		return err
	}

	if err := reminder.Start(c.Context); err != nil {
		return err
	}
	defer reminder.Stop()

	<-c.Context.Done()
	return nil
}

func watchCommand(c *cli.Context) error {
	hub, err := openHub(c)
	if err != nil {
		return err
	}
	defer hub.Close()

	w := c.App.Writer
	if _, err := hub.Records(c.Context); err != nil {
		return err
	}

	watcher, err := hub.NewWatcher(c.Context, func(err error) {
		if err != nil {
			return
		}
		if corpus, err := hub.Corpus(c.Context); err == nil {
			fmt.Fprintf(w, "%s: reloaded %d records\n", time.Now().Format(time.DateTime), corpus.Len())
		}
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(c.Context); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Fprintf(w, "watching %s, press Ctrl-C to stop\n", hub.Config().Sources.Dir)
	<-c.Context.Done()
	return nil
}

func printRecords(w io.Writer, records []core.FacultyRecord) {
	for i := range records {
		r := &records[i]
		fmt.Fprintf(w, "%s", r.Name)
		if r.Designation != "" {
			fmt.Fprintf(w, ", %s", r.Designation)
		}
		fmt.Fprintln(w)
		if r.Department != "" || r.CollegeName != "" {
			fmt.Fprintf(w, "  %s\n", strings.Trim(r.Department+" | "+r.CollegeName, " |"))
		}
		if r.Email != "" {
			fmt.Fprintf(w, "  %s\n", r.Email)
		}
		if interests := r.Interests(); len(interests) > 0 {
			fmt.Fprintf(w, "  Interests: %s\n", strings.Join(interests, ", "))
		}
		if r.ProfileURL != "" {
			fmt.Fprintf(w, "  %s\n", r.ProfileURL)
		}
	}
}

func printInteractions(w io.Writer, interactions []*core.Interaction) {
	for _, i := range interactions {
		status := "waiting"
		if i.Responded {
			status = "responded"
		}
		fmt.Fprintf(w, "#%-4d %-30s sent %s  follow up %s  %s\n",
			i.Id, i.ProfessorName,
			i.SentAt.Local().Format(time.DateOnly),
			formatDate(i.FollowupAt),
			status)
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateOnly)
}
