package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/domain/services"
	"github.com/johnquangdev/standup-assistant/internal/infrastructure/metrics"
	"github.com/johnquangdev/standup-assistant/internal/usecase/lenient"
	"github.com/johnquangdev/standup-assistant/internal/usecase/prompt"
	"github.com/johnquangdev/standup-assistant/internal/usecase/statestore"
	"github.com/johnquangdev/standup-assistant/pkg/callcontext"
)

const minutesHTMLPrompt = `You are an assistant writing minutes of meeting for a daily standup.
Write professional, well-structured HTML minutes with sections for attendance,
the overall summary, blockers, delays, work item status, sprint health and
action items. Use tables where they help. Reply with HTML only.`

const minutesTextPrompt = `You are an assistant writing minutes of meeting for a daily standup.
Write plain-text minutes with the same sections as an email body: attendance,
summary, blockers, delays, work item status, sprint health and action items.
Reply with plain text only.`

var shell = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Subject}}</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.5; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; }
h1, h2, h3 { color: #2c3e50; }
table { border-collapse: collapse; width: 100%; margin-bottom: 20px; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background-color: #f2f2f2; }
.blocker { color: #c0392b; }
.delay { color: #d35400; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>`))

var fallbackBody = template.Must(template.New("minutes").Parse(`<h1>{{.Subject}}</h1>
<h2>Attendance</h2>
<p>Present: {{if .Summary.Participants}}{{range $i, $p := .Summary.Participants}}{{if $i}}, {{end}}{{$p}}{{end}}{{else}}None{{end}}</p>
<p>Missing: {{if .Summary.MissingParticipants}}{{range $i, $p := .Summary.MissingParticipants}}{{if $i}}, {{end}}{{$p}}{{end}}{{else}}None{{end}}</p>
<h2>Summary</h2>
<p>{{.Summary.Summary}}</p>
<h2>Sprint health</h2>
<p>{{.Summary.SprintHealth}}</p>
{{if .Summary.Blockers}}<h2>Blockers</h2>
<ul>{{range .Summary.Blockers}}
<li class="blocker">{{.Participant}}: {{.Description}} ({{.Severity}})</li>{{end}}
</ul>{{end}}
{{if .Summary.Delays}}<h2>Delays</h2>
<ul>{{range .Summary.Delays}}
<li class="delay">{{.Participant}}: {{.Description}} (~{{.RecoveryDays}} days)</li>{{end}}
</ul>{{end}}
{{if .Summary.ActionItems}}<h2>Action items</h2>
<table>
<tr><th>Action</th><th>Assignee</th><th>Priority</th></tr>{{range .Summary.ActionItems}}
<tr><td>{{.Action}}</td><td>{{.Assignee}}</td><td>{{.Priority}}</td></tr>{{end}}
</table>{{end}}`))

var errEmptyMinutes = errors.New("empty minutes")

// MinutesWriter renders the minutes of a call and mails them to the roster
type MinutesWriter struct {
	asker    *prompt.Asker
	notifier services.Notifier
	state    *statestore.Store
	logger   *zap.Logger
	now      func() time.Time
}

func NewMinutesWriter(model services.LanguageModel, notifier services.Notifier, state *statestore.Store, logger *zap.Logger) *MinutesWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MinutesWriter{
		asker:    prompt.NewAsker(model, "minutes", logger),
		notifier: notifier,
		state:    state,
		logger:   logger,
		now:      time.Now,
	}
}

// Subject is the minutes email subject line
func Subject(project string, day time.Time) string {
	return fmt.Sprintf("[%s] Daily Standup Summary - %s", project, day.Format("2006-01-02"))
}

// Recipients collects distinct non-empty contact emails
func Recipients(contacts []entities.Contact) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, c := range contacts {
		email := strings.TrimSpace(c.Email)
		key := strings.ToLower(email)
		if email == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, email)
	}
	return out
}

// Generate writes the minutes. Failing to send is recorded in EmailSent only.
func (w *MinutesWriter) Generate(ctx context.Context, call *entities.Call, summary entities.OverallSummary) entities.MeetingMinutes {
	now := w.now()
	mom := entities.MeetingMinutes{
		Subject:    Subject(call.Project, now),
		Recipients: Recipients(call.Contacts),
		Timestamp:  now,
	}
	mom.HTML = w.html(ctx, call, summary, mom.Subject)
	mom.Text = w.text(ctx, call, summary, mom.Subject)
	mom.EmailSent = w.send(ctx, mom)

	w.state.Put(ctx, call.ID, statestore.KeyMinutes, mom)
	return mom
}

func (w *MinutesWriter) details(call *entities.Call, summary entities.OverallSummary, now time.Time) string {
	return fmt.Sprintf("Team: %s\nProject: %s\nDate: %s\n\nSummary:\n%s\n\nParticipants: %s\nMissing participants: %s\n\nBlockers:\n%s\n\nDelays:\n%s\n\nWork item status:\n%s\n\nSprint health: %s\n\nAction items:\n%s",
		call.Team, call.Project, now.Format("2006-01-02"), summary.Summary,
		joinOrNone(summary.Participants), joinOrNone(summary.MissingParticipants),
		orNone(summary.Blockers), orNone(summary.Delays), toJSON(summary.StoriesStatus),
		summary.SprintHealth, orNone(summary.ActionItems))
}

func (w *MinutesWriter) html(ctx context.Context, call *entities.Call, summary entities.OverallSummary, subject string) string {
	user := w.details(call, summary, w.now()) + "\n\nWrite the HTML minutes."
	reply, err := w.asker.Ask(ctx, 2000, minutesHTMLPrompt, user)
	body := lenient.StripFences(reply)
	if err != nil || body == "" {
		if err == nil {
			err = errEmptyMinutes
		}
		w.asker.Fallback(ctx, err)
		return FallbackHTML(subject, summary)
	}
	return WrapHTML(subject, body)
}

func (w *MinutesWriter) text(ctx context.Context, call *entities.Call, summary entities.OverallSummary, subject string) string {
	user := w.details(call, summary, w.now()) + "\n\nWrite the plain-text minutes."
	reply, err := w.asker.Ask(ctx, 1500, minutesTextPrompt, user)
	body := lenient.StripFences(reply)
	if err != nil || body == "" {
		if err == nil {
			err = errEmptyMinutes
		}
		w.asker.Fallback(ctx, err)
		return FallbackText(subject, summary)
	}
	return body
}

func (w *MinutesWriter) send(ctx context.Context, mom entities.MeetingMinutes) bool {
	fields := append(callcontext.Fields(ctx), zap.Int("recipients", len(mom.Recipients)))
	if w.notifier == nil || len(mom.Recipients) == 0 {
		w.logger.Info("📭 Minutes not mailed, no recipients", fields...)
		return false
	}
	err := w.notifier.Send(ctx, services.Email{
		To:      mom.Recipients,
		Subject: mom.Subject,
		HTML:    mom.HTML,
		Text:    mom.Text,
	})
	metrics.Escalation("minutes", err == nil)
	if err != nil {
		w.logger.Error("❌ Failed to send minutes", append(fields, zap.Error(err))...)
		return false
	}
	w.logger.Info("📧 Minutes sent", fields...)
	return true
}

// WrapHTML puts a body fragment inside the styled document shell
func WrapHTML(subject, body string) string {
	head := strings.ToLower(strings.TrimSpace(body))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		return body
	}
	var buf bytes.Buffer
	if err := shell.Execute(&buf, struct {
		Subject string
		Body    template.HTML
	}{subject, template.HTML(body)}); err != nil {
		return body
	}
	return buf.String()
}

// FallbackHTML renders the minutes from the summary alone
func FallbackHTML(subject string, summary entities.OverallSummary) string {
	var buf bytes.Buffer
	if err := fallbackBody.Execute(&buf, struct {
		Subject string
		Summary entities.OverallSummary
	}{subject, summary}); err != nil {
		return WrapHTML(subject, "<p>"+template.HTMLEscapeString(summary.Summary)+"</p>")
	}
	return WrapHTML(subject, buf.String())
}

// FallbackText renders plain-text minutes from the summary alone
func FallbackText(subject string, summary entities.OverallSummary) string {
	var sb strings.Builder
	sb.WriteString(subject + "\n\n")
	fmt.Fprintf(&sb, "Present: %s\n", joinOrNone(summary.Participants))
	fmt.Fprintf(&sb, "Missing: %s\n\n", joinOrNone(summary.MissingParticipants))
	fmt.Fprintf(&sb, "Summary:\n%s\n\n", summary.Summary)
	fmt.Fprintf(&sb, "Sprint health: %s\n", summary.SprintHealth)
	if len(summary.Blockers) > 0 {
		sb.WriteString("\nBlockers:\n")
		for _, b := range summary.Blockers {
			fmt.Fprintf(&sb, "- %s: %s (%s)\n", b.Participant, b.Description, b.Severity)
		}
	}
	if len(summary.Delays) > 0 {
		sb.WriteString("\nDelays:\n")
		for _, d := range summary.Delays {
			fmt.Fprintf(&sb, "- %s: %s (~%d days)\n", d.Participant, d.Description, d.RecoveryDays)
		}
	}
	if len(summary.ActionItems) > 0 {
		sb.WriteString("\nAction items:\n")
		for _, a := range summary.ActionItems {
			fmt.Fprintf(&sb, "- %s [%s, %s]\n", a.Action, a.Assignee, a.Priority)
		}
	}
	return sb.String()
}
