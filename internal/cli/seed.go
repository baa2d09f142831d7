package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/johnquangdev/standup-assistant/internal/app"
	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/domain/repositories"
	"github.com/johnquangdev/standup-assistant/internal/infrastructure/database"
)

// Fixture is a team described in YAML
type Fixture struct {
	Team     string `yaml:"team"`
	Project  string `yaml:"project"`
	Contacts []struct {
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
		Role  string `yaml:"role"`
	} `yaml:"contacts"`
	Sprint struct {
		Name  string    `yaml:"name"`
		Start time.Time `yaml:"start"`
		End   time.Time `yaml:"end"`
	} `yaml:"sprint"`
	WorkItems []struct {
		Key      string `yaml:"key"`
		Title    string `yaml:"title"`
		Assignee string `yaml:"assignee"`
		Status   string `yaml:"status"`
		Points   int    `yaml:"points"`
	} `yaml:"work_items"`
	OpenBlockers []struct {
		Key      string    `yaml:"key"`
		Title    string    `yaml:"title"`
		Assignee string    `yaml:"assignee"`
		Reason   string    `yaml:"reason"`
		Raised   time.Time `yaml:"raised"`
	} `yaml:"open_blockers"`
}

// SeedResult counts what a fixture wrote
type SeedResult struct {
	Contacts  int
	WorkItems int
	Blockers  int
}

var validStatuses = map[entities.WorkItemStatus]bool{
	entities.WorkItemStatusToDo:       true,
	entities.WorkItemStatusInProgress: true,
	entities.WorkItemStatusDone:       true,
	entities.WorkItemStatusBlocked:    true,
}

// LoadFixture parses and checks a team fixture
func LoadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}

	f.Team = strings.TrimSpace(f.Team)
	switch {
	case f.Team == "":
		return nil, fmt.Errorf("fixture: team is required")
	case len(f.Contacts) == 0:
		return nil, fmt.Errorf("fixture: at least one contact is required")
	case f.Sprint.Name == "":
		return nil, fmt.Errorf("fixture: sprint name is required")
	case f.Sprint.End.Before(f.Sprint.Start):
		return nil, fmt.Errorf("fixture: sprint ends before it starts")
	}
	if f.Project == "" {
		f.Project = f.Team
	}
	for i := range f.WorkItems {
		if f.WorkItems[i].Status == "" {
			f.WorkItems[i].Status = string(entities.WorkItemStatusToDo)
		}
		if !validStatuses[entities.WorkItemStatus(f.WorkItems[i].Status)] {
			return nil, fmt.Errorf("fixture: work item %s has unknown status %q", f.WorkItems[i].Key, f.WorkItems[i].Status)
		}
	}
	return &f, nil
}

// Apply upserts the fixture; rerunning it updates rows in place
func (f *Fixture) Apply(ctx context.Context, repo repositories.TeamRepository) (SeedResult, error) {
	var res SeedResult

	for i, c := range f.Contacts {
		contact := &entities.Contact{
			TeamName: f.Team,
			Name:     strings.TrimSpace(c.Name),
			Email:    strings.TrimSpace(c.Email),
			Role:     c.Role,
			Position: i,
		}
		if err := repo.SaveContact(ctx, contact); err != nil {
			return res, fmt.Errorf("failed to save contact %s: %w", c.Name, err)
		}
		res.Contacts++
	}

	sprint := &entities.Sprint{
		TeamName:    f.Team,
		ProjectName: f.Project,
		Name:        f.Sprint.Name,
		StartDate:   f.Sprint.Start,
		EndDate:     f.Sprint.End,
	}
	if err := repo.SaveSprint(ctx, sprint); err != nil {
		return res, fmt.Errorf("failed to save sprint: %w", err)
	}

	for _, it := range f.WorkItems {
		item := &entities.WorkItem{
			SprintID: sprint.ID,
			ItemKey:  it.Key,
			Title:    it.Title,
			Assignee: it.Assignee,
			Status:   entities.WorkItemStatus(it.Status),
			Points:   it.Points,
		}
		if err := repo.SaveWorkItem(ctx, item); err != nil {
			return res, fmt.Errorf("failed to save work item %s: %w", it.Key, err)
		}
		res.WorkItems++
	}

	for _, b := range f.OpenBlockers {
		raised := b.Raised
		if raised.IsZero() {
			raised = time.Now()
		}
		blocker := &entities.OpenBlocker{
			TeamName:  f.Team,
			ItemKey:   b.Key,
			ItemTitle: b.Title,
			Assignee:  b.Assignee,
			Reason:    b.Reason,
			Status:    entities.OpenBlockerStatusOpen,
			RaisedAt:  raised,
		}
		if err := repo.SaveOpenBlocker(ctx, blocker); err != nil {
			return res, fmt.Errorf("failed to save blocker %s: %w", b.Key, err)
		}
		res.Blockers++
	}
	return res, nil
}

func newSeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert a team roster, sprint and work items from YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fh, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open fixture: %w", err)
			}
			defer fh.Close()

			fixture, err := LoadFixture(fh)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.NewPostgresDB(cfg)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			teams, _ := app.Repositories(db)
			res, err := fixture.Apply(cmd.Context(), teams)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s: %d contact(s), %d work item(s), %d open blocker(s)\n",
				fixture.Team, res.Contacts, res.WorkItems, res.Blockers)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Team fixture YAML (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
