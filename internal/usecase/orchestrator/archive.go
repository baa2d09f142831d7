package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/pkg/callcontext"
)

type artifact struct {
	name        string
	contentType string
	data        []byte
}

// ArtifactKey is the object key of a call artifact
func ArtifactKey(call *entities.Call, name string) string {
	return fmt.Sprintf("calls/%s/%s/%s", call.Team, call.ID, name)
}

// archive copies the call's reports to object storage; failures only log
func (o *orchestrator) archive(ctx context.Context, call *entities.Call, out *Outcome) {
	if o.artifacts == nil {
		return
	}

	list := []artifact{
		{name: "minutes.html", contentType: "text/html; charset=utf-8", data: []byte(out.Minutes.HTML)},
		{name: "minutes.txt", contentType: "text/plain; charset=utf-8", data: []byte(out.Minutes.Text)},
	}
	for name, v := range map[string]any{
		"results.json":       out.Results,
		"summary.json":       out.Summary,
		"status_report.json": out.Report,
	} {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			continue
		}
		list = append(list, artifact{name: name, contentType: "application/json", data: b})
	}

	stored := 0
	for _, a := range list {
		key := ArtifactKey(call, a.name)
		if err := o.artifacts.Put(ctx, key, a.contentType, a.data); err != nil {
			o.logger.Warn("⚠️ Failed to archive call artifact",
				append(callcontext.Fields(ctx), zap.String("key", key), zap.Error(err))...)
			continue
		}
		stored++
	}

	o.logger.Info("📦 Call artifacts archived",
		append(callcontext.Fields(ctx), zap.Int("stored", stored), zap.Int("total", len(list)))...)
}
