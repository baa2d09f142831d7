package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/johnquangdev/standup-assistant/internal/app"
	"github.com/johnquangdev/standup-assistant/internal/infrastructure/database"
	"github.com/johnquangdev/standup-assistant/internal/infrastructure/external/livekit"
	"github.com/johnquangdev/standup-assistant/internal/usecase/orchestrator"
)

func newRunCommand(newLogger func() *zap.Logger) *cobra.Command {
	var (
		team           string
		aggressiveness int
		dryRun         bool
		scriptFile     string
		asJSON         bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one standup call for a team and wait for it to finish",
		Long: `Run prepares and conducts a standup call in the foreground.

With --script the call uses scripted in-process sessions instead of LiveKit,
answering from a YAML map of participant name to answers. --dry-run also
keeps Jira and email silent.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger()
			defer func() { _ = logger.Sync() }()

			opts := app.Options{DryRun: dryRun}
			if scriptFile != "" {
				f, err := os.Open(scriptFile)
				if err != nil {
					return fmt.Errorf("failed to open script: %w", err)
				}
				defer f.Close()
				if opts.Script, err = LoadScript(f); err != nil {
					return err
				}
			}

			db, err := database.NewPostgresDB(cfg)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			a, err := app.Build(cmd.Context(), cfg, db, logger, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			defer a.Orchestrator.Shutdown(cmd.Context())

			out, err := a.Orchestrator.Run(cmd.Context(), orchestrator.StartInput{
				Team:           team,
				Aggressiveness: aggressiveness,
			})
			if out != nil {
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					if encErr := enc.Encode(out); encErr != nil {
						return encErr
					}
				} else {
					printOutcome(cmd.OutOrStdout(), out)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&team, "team", "t", "", "Team to call (required)")
	cmd.Flags().IntVarP(&aggressiveness, "aggressiveness", "a", 0, "Tone from 1 (gentle) to 10 (pushy); 0 uses the default")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Do not update Jira or send email")
	cmd.Flags().StringVar(&scriptFile, "script", "", "YAML file of scripted answers; replaces LiveKit")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full outcome as JSON")
	_ = cmd.MarkFlagRequired("team")
	return cmd
}

// LoadScript reads a participant-to-answers YAML map
func LoadScript(r io.Reader) (livekit.Script, error) {
	var script livekit.Script
	if err := yaml.NewDecoder(r).Decode(&script); err != nil {
		if err == io.EOF {
			return livekit.Script{}, nil
		}
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if script == nil {
		script = livekit.Script{}
	}
	return script, nil
}

func printOutcome(w io.Writer, out *orchestrator.Outcome) {
	fmt.Fprintf(w, "Call %s: %s\n", out.Call.ID, out.Call.Status)
	if out.Call.Error != nil {
		fmt.Fprintf(w, "Error: %s\n", *out.Call.Error)
	}
	fmt.Fprintf(w, "Participants: %s\n", strings.Join(out.Summary.Participants, ", "))
	if len(out.Summary.MissingParticipants) > 0 {
		fmt.Fprintf(w, "Missing: %s\n", strings.Join(out.Summary.MissingParticipants, ", "))
	}
	fmt.Fprintf(w, "Blockers: %d, delays: %d\n", len(out.Summary.Blockers), len(out.Summary.Delays))
	fmt.Fprintf(w, "Sprint health: %s (%d%% complete)\n", out.Summary.SprintHealth, out.Report.Percentage)
	if out.Minutes.EmailSent {
		fmt.Fprintf(w, "Minutes sent to %s\n", strings.Join(out.Minutes.Recipients, ", "))
	}
}
