package conductor

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/usecase/lenient"
)

// Greeting is always the first question put to a participant
func Greeting(name string) string {
	return fmt.Sprintf("Good morning, %s. How are you today? Please provide your standup update.", name)
}

func (c *Conductor) introduction(ctx context.Context, call *entities.Call) string {
	sprintName, progress := "the current sprint", "unknown"
	if call.Sprint != nil {
		passed, total := call.Sprint.DaysElapsed(c.now())
		sprintName = call.Sprint.Name
		progress = fmt.Sprintf("%d/%d days", passed, total)
	}

	system := fmt.Sprintf(`You are a scrum master assistant opening a daily standup meeting.
Key information:
- Team: %s
- Project: %s
- Sprint: %s
- Sprint progress: %s
- Aggressiveness level: %d/10

Write a brief, professional introduction of 3-4 sentences. Be direct but friendly.
Match your tone to the aggressiveness level (1 = very gentle, 10 = very direct and pushy).`,
		call.Team, call.Project, sprintName, progress, call.Aggressiveness)

	reply, err := c.asker.Ask(ctx, 300, system, "Generate a scrum call introduction.")
	if err != nil || reply == "" {
		c.asker.Fallback(ctx, err)
		return fmt.Sprintf("Good morning, %s team. This is the daily standup for %s, %s, day %s. Let's keep updates short and focused.",
			call.Team, call.Project, sprintName, progress)
	}
	return reply
}

// questions returns the greeting followed by up to MaxQuestions generated questions
func (c *Conductor) questions(ctx context.Context, call *entities.Call, name string) []string {
	var items strings.Builder
	for _, it := range call.ItemsAssignedTo(name) {
		fmt.Fprintf(&items, "- %s: %s (Status: %s, Points: %d)\n", it.ItemKey, it.Title, it.Status, it.Points)
	}
	if items.Len() == 0 {
		items.WriteString("No work items assigned.\n")
	}

	var blockers strings.Builder
	for _, b := range call.BlockersAssignedTo(name) {
		fmt.Fprintf(&blockers, "- Blocked item: %s - %s\n  Reason: %s\n  Days blocked: %d\n",
			b.ItemKey, b.ItemTitle, b.Reason, b.DaysOpen(c.now()))
	}
	if blockers.Len() == 0 {
		blockers.WriteString("No blockers reported.\n")
	}

	sprintName := call.SprintName
	if sprintName == "" {
		sprintName = "current sprint"
	}
	system := fmt.Sprintf(`You are a scrum master assistant running a daily standup.
Generate questions for %s based on their work items and blockers.

Sprint: %s
Aggressiveness level: %d/10

Assigned work items:
%s
Current blockers:
%s
Write 1-%d concise questions, one per line, that ask about progress on the
assigned items, follow up on existing blockers and check for new issues.
Match your tone to the aggressiveness level.`,
		name, sprintName, call.Aggressiveness, items.String(), blockers.String(), c.cfg.MaxQuestions)

	out := []string{Greeting(name)}
	reply, err := c.asker.Ask(ctx, 500, system, fmt.Sprintf("Generate questions for %s's standup update.", name))
	lines := lenient.NonEmptyLines(reply)
	if err != nil || len(lines) == 0 {
		c.asker.Fallback(ctx, err)
		return append(out, fallbackQuestions(call, name)...)
	}
	if len(lines) > c.cfg.MaxQuestions {
		lines = lines[:c.cfg.MaxQuestions]
	}
	return append(out, lines...)
}

func fallbackQuestions(call *entities.Call, name string) []string {
	qs := []string{}
	if items := call.ItemsAssignedTo(name); len(items) > 0 {
		qs = append(qs, fmt.Sprintf("How is %s going?", items[0].ItemKey))
	}
	if bl := call.BlockersAssignedTo(name); len(bl) > 0 {
		qs = append(qs, fmt.Sprintf("Is %s still blocked?", bl[0].ItemKey))
	}
	return append(qs, "Is anything blocking you or slowing you down?")
}

func (c *Conductor) moveOn(ctx context.Context, name string) string {
	system := fmt.Sprintf(`You are a scrum master assistant running a daily standup.
%s has not responded for over a minute.
Write a brief, professional message that notes %s seems to be unavailable,
says you will move on to the next person and that this will be noted in the
meeting minutes. Do not be judgmental.`, name, name)

	reply, err := c.asker.Ask(ctx, 200, system,
		fmt.Sprintf("Generate a message to move on from %s who is not responding.", name))
	if err != nil || reply == "" {
		c.asker.Fallback(ctx, err)
		return fmt.Sprintf("It seems %s is unavailable right now. Let's move on; this will be noted in the minutes.", name)
	}
	return reply
}

func (c *Conductor) conclusion(ctx context.Context, call *entities.Call, results *entities.CallResults) string {
	total := len(call.ParticipantNames())
	present := total - len(results.MissingDevelopers)
	if present < 0 {
		present = 0
	}

	system := fmt.Sprintf(`You are a scrum master assistant closing a daily standup meeting.
Key information:
- Team: %s
- Project: %s
- Sprint: %s
- Participants: %d/%d
- Blockers identified: %d
- Delays identified: %d

Write a brief, professional conclusion of 3-4 sentences. Mention that a
meeting summary will be shared by email and thank everyone.`,
		call.Team, call.Project, call.SprintName, present, total, len(results.Blockers), len(results.Delays))

	reply, err := c.asker.Ask(ctx, 300, system, "Generate a scrum call conclusion.")
	if err != nil || reply == "" {
		c.asker.Fallback(ctx, err)
		return fmt.Sprintf("That's everyone. %d of %d participants gave updates, with %d blockers and %d delays noted. A summary will be emailed shortly. Thank you all.",
			present, total, len(results.Blockers), len(results.Delays))
	}
	return reply
}
