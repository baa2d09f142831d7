// Package app wires the standup pipeline from configuration. Both the API
// server and standupctl build their orchestrator through Build.
package app

import (
	"context"
	"fmt"
	"io"
	"log"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/standup-assistant/internal/adapter/repository"
	"github.com/johnquangdev/standup-assistant/internal/domain/repositories"
	"github.com/johnquangdev/standup-assistant/internal/domain/services"
	"github.com/johnquangdev/standup-assistant/internal/infrastructure/cache"
	"github.com/johnquangdev/standup-assistant/internal/infrastructure/external/jira"
	"github.com/johnquangdev/standup-assistant/internal/infrastructure/external/livekit"
	"github.com/johnquangdev/standup-assistant/internal/infrastructure/external/mailer"
	"github.com/johnquangdev/standup-assistant/internal/infrastructure/storage"
	"github.com/johnquangdev/standup-assistant/internal/usecase/attendance"
	"github.com/johnquangdev/standup-assistant/internal/usecase/blocker"
	"github.com/johnquangdev/standup-assistant/internal/usecase/classifier"
	"github.com/johnquangdev/standup-assistant/internal/usecase/conductor"
	"github.com/johnquangdev/standup-assistant/internal/usecase/delay"
	"github.com/johnquangdev/standup-assistant/internal/usecase/orchestrator"
	"github.com/johnquangdev/standup-assistant/internal/usecase/report"
	"github.com/johnquangdev/standup-assistant/internal/usecase/statestore"
	"github.com/johnquangdev/standup-assistant/internal/usecase/summary"
	"github.com/johnquangdev/standup-assistant/pkg/ai"
	"github.com/johnquangdev/standup-assistant/pkg/config"
)

// Options adjusts how the pipeline is wired
type Options struct {
	// Script replaces LiveKit with scripted in-process sessions when set
	Script livekit.Script
	// DryRun keeps Jira and email silent and holds call state in memory.
	// With scripted sessions it also skips object storage.
	DryRun bool
}

// App is a wired orchestrator plus the resources to release on exit
type App struct {
	Orchestrator orchestrator.Service
	State        *statestore.Store
	closers      []io.Closer
}

// Close releases backends in reverse order of creation
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Printf("⚠️  close failed: %v", err)
		}
	}
}

// Build assembles the pipeline over an open database
func Build(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{}

	backend, err := stateBackend(ctx, cfg, a, opts.DryRun)
	if err != nil {
		return nil, err
	}
	state := statestore.New(backend, cfg.Standup.StateTTL, logger)
	a.State = state

	callRepo := repository.NewCallRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	attendRepo := repository.NewAttendanceRepository(db)

	var artifacts services.ArtifactStore
	if opts.DryRun && scripted(cfg, opts) {
		log.Println("⚠️  Dry run, call artifacts are not archived")
	} else {
		log.Println("🪣 Connecting to object storage...")
		store, err := storage.NewMinIOStore(ctx, &cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to init storage: %w", err)
		}
		log.Printf("✅ Object storage ready (bucket %s)", store.Bucket())
		artifacts = store
	}

	log.Println("🤖 Initializing AI components...")
	groq := ai.NewGroqClient(&cfg.Groq)
	var transcriber ai.Transcriber = ai.PassthroughTranscriber{}
	if !cfg.AssemblyAI.UseMock && opts.Script == nil {
		transcriber = ai.NewAssemblyAITranscriber(&cfg.AssemblyAI)
	} else {
		log.Println("⚠️  Speech recognition running in passthrough mode")
	}
	speech := ai.NewSpeechService(groq, transcriber, logger)

	var tickets services.TicketSystem
	var notifier services.Notifier
	if !opts.DryRun {
		if cfg.JiraEnabled() {
			tickets = jira.NewClient(cfg.Jira, logger)
		}
		if cfg.SMTPEnabled() {
			notifier = mailer.NewSMTPMailer(cfg.SMTP, logger)
		}
	}

	sessions, err := sessionFactory(cfg, artifacts, speech, state, logger, opts)
	if err != nil {
		return nil, err
	}

	blockers := blocker.NewHandler(groq, tickets, notifier, state, blocker.Config{
		StakeholderEmails:   cfg.Standup.StakeholderEmails,
		BlockedTransitionID: cfg.Standup.BlockedTransitionID,
	}, logger)
	delays := delay.NewHandler(groq, state, logger)
	cls := classifier.New(groq, blockers, delays, state, logger)

	workers := orchestrator.Workers{
		Conductor: conductor.New(groq, cls, speech, state, conductor.Config{
			ResponseTimeout: cfg.Standup.ResponseTimeout,
			SilenceTimeout:  cfg.Standup.SilenceTimeout,
			MaxQuestions:    cfg.Standup.MaxQuestions,
			Language:        cfg.Standup.Language,
		}, logger),
		Attendance: attendance.NewTracker(attendRepo, groq, state, cfg.Standup.ResetAttendanceOnPresence, logger),
		Summarizer: summary.NewSummarizer(groq, state, logger),
		Status:     report.NewStatusReporter(groq, state, logger),
		Minutes:    report.NewMinutesWriter(groq, notifier, state, logger),
	}

	a.Orchestrator = orchestrator.NewService(
		callRepo, teamRepo, attendRepo,
		sessions, artifacts, state, workers,
		orchestrator.Config{
			MaxConcurrentCalls:    cfg.Standup.MaxConcurrentCalls,
			DefaultAggressiveness: cfg.Standup.DefaultAggressiveness,
			MaxCallDuration:       cfg.Standup.MaxCallDuration,
		},
		logger,
	)
	return a, nil
}

// Repositories returns the gorm repositories used by seeding tools
func Repositories(db *gorm.DB) (repositories.TeamRepository, repositories.CallRepository) {
	return repository.NewTeamRepository(db), repository.NewCallRepository(db)
}

func stateBackend(ctx context.Context, cfg *config.Config, a *App, dryRun bool) (statestore.Backend, error) {
	if cfg.Redis.Disabled || dryRun {
		log.Println("⚠️  Keeping call state in memory")
		mem := cache.NewMemoryStore()
		a.closers = append(a.closers, mem)
		return mem, nil
	}
	log.Println("📦 Connecting to Redis...")
	rs, err := cache.NewRedisStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, rs)
	return rs, nil
}

func scripted(cfg *config.Config, opts Options) bool {
	return opts.Script != nil || cfg.LiveKit.UseMock
}

func sessionFactory(
	cfg *config.Config,
	artifacts services.ArtifactStore,
	speech services.SpeechService,
	state *statestore.Store,
	logger *zap.Logger,
	opts Options,
) (services.SessionFactory, error) {
	if scripted(cfg, opts) {
		log.Println("⚠️  LiveKit running in MOCK mode (scripted sessions)")
		return livekit.NewMockSessionFactory(opts.Script, logger), nil
	}

	log.Printf("🎥 Using LiveKit at %s", cfg.LiveKit.URL)
	rooms := livekit.NewRoomAdmin(cfg.LiveKit.URL, cfg.LiveKit.APIKey, cfg.LiveKit.APISecret)
	recorder := livekit.NewEgressRecorder(cfg.LiveKit, cfg.Storage)
	return livekit.NewSessionFactory(cfg.LiveKit, rooms, recorder, artifacts, speech, state, livekit.SessionConfig{
		SpeechTopic:   cfg.LiveKit.SpeechTopic,
		EndOfTurnGap:  cfg.Standup.EndOfTurnGap,
		CaptureWait:   cfg.LiveKit.CaptureWait,
		PresignExpiry: cfg.Storage.PresignExpiry,
		Voice:         ai.VoiceParams{Voice: cfg.Groq.TTSVoice, Language: cfg.Standup.Language},
		PaceSpeech:    true,
	}, logger), nil
}
