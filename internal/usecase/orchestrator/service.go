package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/domain/repositories"
	"github.com/johnquangdev/standup-assistant/internal/domain/services"
	"github.com/johnquangdev/standup-assistant/internal/infrastructure/metrics"
	"github.com/johnquangdev/standup-assistant/internal/usecase/attendance"
	"github.com/johnquangdev/standup-assistant/internal/usecase/conductor"
	usecaseErrors "github.com/johnquangdev/standup-assistant/internal/usecase/errors"
	"github.com/johnquangdev/standup-assistant/internal/usecase/report"
	"github.com/johnquangdev/standup-assistant/internal/usecase/statestore"
	"github.com/johnquangdev/standup-assistant/internal/usecase/summary"
	"github.com/johnquangdev/standup-assistant/pkg/callcontext"
)

// Service defines the call orchestration use case
type Service interface {
	// Start prepares a call and runs it in the background
	Start(ctx context.Context, input StartInput) (*entities.Call, error)

	// Run prepares and runs a call to completion
	Run(ctx context.Context, input StartInput) (*Outcome, error)

	// GetCall retrieves the durable call record
	GetCall(ctx context.Context, callID uuid.UUID) (*entities.Call, error)

	// GetSummary retrieves the persisted overall summary of a call
	GetSummary(ctx context.Context, callID uuid.UUID) (*entities.OverallSummary, error)

	// GetState returns one raw state-store artifact of a call
	GetState(ctx context.Context, callID uuid.UUID, key string) (json.RawMessage, error)

	// ListAttendance returns the missing-developer records of a team
	ListAttendance(ctx context.Context, team string) ([]*entities.MissingDeveloper, error)

	// Shutdown cancels running calls and waits for them to close
	Shutdown(ctx context.Context) error
}

// StartInput selects the team and tone of a call
type StartInput struct {
	Team           string
	Aggressiveness int
}

// Outcome is everything a finished call produced
type Outcome struct {
	Call    *entities.Call
	Results entities.CallResults
	Summary entities.OverallSummary
	Report  entities.StatusReport
	Minutes entities.MeetingMinutes
}

// CallState is the value kept under the status key
type CallState struct {
	Status    entities.CallStatus `json:"status"`
	Error     string              `json:"error,omitempty"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Workers bundles the pipeline stages run for each call
type Workers struct {
	Conductor  *conductor.Conductor
	Attendance *attendance.Tracker
	Summarizer *summary.Summarizer
	Status     *report.StatusReporter
	Minutes    *report.MinutesWriter
}

// Config holds orchestration limits
type Config struct {
	MaxConcurrentCalls    int
	DefaultAggressiveness int
	// MaxCallDuration bounds one call; zero leaves it unbounded
	MaxCallDuration time.Duration
}

type orchestrator struct {
	calls     repositories.CallRepository
	teams     repositories.TeamRepository
	attend    repositories.AttendanceRepository
	sessions  services.SessionFactory
	artifacts services.ArtifactStore
	state     *statestore.Store
	workers   Workers
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time

	slots  chan struct{}
	wg     sync.WaitGroup
	root   context.Context
	cancel context.CancelFunc
}

// NewService constructs the orchestrator. artifacts may be nil.
func NewService(
	calls repositories.CallRepository,
	teams repositories.TeamRepository,
	attend repositories.AttendanceRepository,
	sessions services.SessionFactory,
	artifacts services.ArtifactStore,
	state *statestore.Store,
	workers Workers,
	cfg Config,
	logger *zap.Logger,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxConcurrentCalls < 1 {
		cfg.MaxConcurrentCalls = 1
	}
	if cfg.DefaultAggressiveness == 0 {
		cfg.DefaultAggressiveness = 5
	}
	root, cancel := context.WithCancel(context.Background())
	return &orchestrator{
		calls:     calls,
		teams:     teams,
		attend:    attend,
		sessions:  sessions,
		artifacts: artifacts,
		state:     state,
		workers:   workers,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		slots:     make(chan struct{}, cfg.MaxConcurrentCalls),
		root:      root,
		cancel:    cancel,
	}
}

func (o *orchestrator) Start(ctx context.Context, input StartInput) (*entities.Call, error) {
	if err := o.acquire(); err != nil {
		return nil, err
	}
	call, err := o.prepare(ctx, input)
	if err != nil {
		o.release()
		return nil, err
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer o.release()
		if _, err := o.execute(o.root, call); err != nil {
			o.logger.Warn("⚠️ Background standup call failed",
				zap.String("call_id", call.ID.String()),
				zap.Error(err),
			)
		}
	}()

	return call, nil
}

func (o *orchestrator) Run(ctx context.Context, input StartInput) (*Outcome, error) {
	if err := o.acquire(); err != nil {
		return nil, err
	}
	defer o.release()

	call, err := o.prepare(ctx, input)
	if err != nil {
		return nil, err
	}
	return o.execute(ctx, call)
}

func (o *orchestrator) acquire() error {
	select {
	case o.slots <- struct{}{}:
		return nil
	default:
		return usecaseErrors.ErrCapacityExhausted
	}
}

func (o *orchestrator) release() {
	<-o.slots
}

// prepare loads the roster and sprint snapshot and creates the call record
func (o *orchestrator) prepare(ctx context.Context, input StartInput) (*entities.Call, error) {
	team := strings.TrimSpace(input.Team)
	if team == "" {
		return nil, fmt.Errorf("%w: team is required", usecaseErrors.ErrInvalidInput)
	}
	aggr := input.Aggressiveness
	if aggr == 0 {
		aggr = o.cfg.DefaultAggressiveness
	}
	if aggr < entities.MinAggressiveness || aggr > entities.MaxAggressiveness {
		return nil, usecaseErrors.ErrInvalidAggressiveness
	}

	contacts, err := o.teams.ListContacts(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	if len(contacts) == 0 {
		return nil, fmt.Errorf("%w: %s", usecaseErrors.ErrTeamNotFound, team)
	}

	sprint, err := o.teams.FindActiveSprint(ctx, team, o.now())
	if err != nil {
		return nil, fmt.Errorf("failed to load sprint: %w", err)
	}
	if sprint == nil {
		return nil, fmt.Errorf("%w: %s", usecaseErrors.ErrNoActiveSprint, team)
	}

	items, err := o.teams.ListWorkItems(ctx, sprint.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load work items: %w", err)
	}
	blockers, err := o.teams.ListOpenBlockers(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("failed to load open blockers: %w", err)
	}

	call := entities.NewCall(team, sprint.ProjectName, contacts, aggr).WithSnapshot(sprint, items, blockers)
	call.RoomName = RoomName(team, call.ID)

	if err := o.calls.Create(ctx, call); err != nil {
		return nil, fmt.Errorf("failed to create call: %w", err)
	}
	o.setStatus(ctx, call)

	o.logger.Info("📝 Standup call scheduled",
		zap.String("call_id", call.ID.String()),
		zap.String("team", team),
		zap.String("sprint", sprint.Name),
		zap.Int("participants", len(contacts)),
		zap.Int("work_items", len(items)),
	)
	return call, nil
}

// RoomName is the meeting room a call is held in
func RoomName(team string, callID uuid.UUID) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, strings.TrimSpace(team))
	return fmt.Sprintf("standup-%s-%s", slug, callID.String()[:8])
}

// execute runs the pipeline. A session failure marks the call failed and
// no reports are produced.
func (o *orchestrator) execute(parent context.Context, call *entities.Call) (*Outcome, error) {
	ctx, cancel := callcontext.CallBegin(parent, call.ID, call.Team, o.cfg.MaxCallDuration)
	defer cancel()

	started := o.now()
	metrics.CallStarted()

	call.MarkAsInProgress()
	if err := o.calls.Update(ctx, call); err != nil {
		return nil, o.fail(ctx, call, started, fmt.Errorf("failed to update call: %w", err))
	}
	o.setStatus(ctx, call)
	o.logger.Info("📞 Standup call started", callcontext.Fields(ctx)...)

	session, err := o.sessions.Open(ctx, call)
	if err != nil {
		return nil, o.fail(ctx, call, started, fmt.Errorf("%w: %v", usecaseErrors.ErrSessionUnavailable, err))
	}

	results, err := o.workers.Conductor.Run(ctx, call, session)
	if err != nil {
		return nil, o.fail(ctx, call, started, err)
	}
	frozen := results.Snapshot()

	o.trackAttendance(ctx, call, frozen)

	out := &Outcome{Call: call, Results: frozen}
	out.Summary = o.workers.Summarizer.Summarize(ctx, call.ID, frozen)
	out.Report = o.workers.Status.Generate(ctx, call.ID, out.Summary, call.WorkItems)
	out.Minutes = o.workers.Minutes.Generate(ctx, call, out.Summary)

	o.archive(ctx, call, out)

	if err := o.calls.SaveSummary(ctx, entities.NewCallSummary(call.ID, out.Summary)); err != nil {
		o.logger.Error("❌ Failed to persist call summary",
			append(callcontext.Fields(ctx), zap.Error(err))...)
	}

	call.MarkAsCompleted()
	if err := o.calls.Update(ctx, call); err != nil {
		o.logger.Error("❌ Failed to persist completed call",
			append(callcontext.Fields(ctx), zap.Error(err))...)
	}
	o.setStatus(ctx, call)
	metrics.CallFinished(string(entities.CallStatusCompleted), o.now().Sub(started).Seconds())

	o.logger.Info("✅ Standup call completed",
		append(callcontext.Fields(ctx),
			zap.String("sprint_health", string(out.Summary.SprintHealth)),
			zap.Int("percentage", out.Report.Percentage),
			zap.Bool("minutes_sent", out.Minutes.EmailSent),
			zap.Duration("duration", o.now().Sub(started)),
		)...)
	return out, nil
}

func (o *orchestrator) fail(ctx context.Context, call *entities.Call, started time.Time, cause error) error {
	bg := context.WithoutCancel(ctx)
	call.MarkAsFailed(cause)
	if err := o.calls.Update(bg, call); err != nil {
		o.logger.Error("❌ Failed to persist failed call",
			append(callcontext.Fields(ctx), zap.Error(err))...)
	}
	o.setStatus(bg, call)
	metrics.CallFinished(string(entities.CallStatusFailed), o.now().Sub(started).Seconds())

	o.logger.Error("❌ Standup call failed",
		append(callcontext.Fields(ctx), zap.Error(cause))...)
	return cause
}

// trackAttendance counts an absence for every participant on the missing
// list and resets the streak of everyone else
func (o *orchestrator) trackAttendance(ctx context.Context, call *entities.Call, results entities.CallResults) {
	for _, name := range call.ParticipantNames() {
		if results.WasMissing(name) {
			o.workers.Attendance.RecordAbsence(ctx, call.ID, call.Team, name)
			continue
		}
		o.workers.Attendance.RecordPresence(ctx, name)
	}
}

func (o *orchestrator) setStatus(ctx context.Context, call *entities.Call) {
	st := CallState{Status: call.Status, UpdatedAt: o.now()}
	if call.Error != nil {
		st.Error = *call.Error
	}
	o.state.Put(ctx, call.ID, statestore.KeyStatus, st)
}

func (o *orchestrator) GetCall(ctx context.Context, callID uuid.UUID) (*entities.Call, error) {
	call, err := o.calls.FindByID(ctx, callID)
	if err != nil {
		return nil, fmt.Errorf("failed to get call: %w", err)
	}
	if call == nil {
		return nil, usecaseErrors.ErrCallNotFound
	}
	return call, nil
}

func (o *orchestrator) GetSummary(ctx context.Context, callID uuid.UUID) (*entities.OverallSummary, error) {
	row, err := o.calls.FindSummary(ctx, callID)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	if row != nil {
		s := row.Summary()
		return &s, nil
	}
	// a call still finishing only has the state-store copy
	var s entities.OverallSummary
	if o.state.Get(ctx, callID, statestore.KeyOverallSummary, &s) {
		return &s, nil
	}
	return nil, usecaseErrors.ErrNotFound
}

func (o *orchestrator) GetState(ctx context.Context, callID uuid.UUID, key string) (json.RawMessage, error) {
	raw, ok := o.state.GetRaw(ctx, callID, key)
	if !ok {
		return nil, usecaseErrors.ErrNotFound
	}
	return raw, nil
}

func (o *orchestrator) ListAttendance(ctx context.Context, team string) ([]*entities.MissingDeveloper, error) {
	records, err := o.attend.ListByTeam(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return records, nil
}

func (o *orchestrator) Shutdown(ctx context.Context) error {
	o.cancel()
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
