package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"stock-advisor/config"
	"stock-advisor/pkg/common"
	"time"

	"go.uber.org/zap/zapcore"
)

// AlertCore forwards flagged error entries to an external monitoring webhook
// so cycle failures reach the operations collaborator without a direct UI.
type AlertCore struct {
	cfg      *config.AlertingWebhook
	core     zapcore.Core
	minLevel zapcore.Level
	client   *http.Client
}

func NewAlertCore(cfg *config.AlertingWebhook, core zapcore.Core, minLevel zapcore.Level) *AlertCore {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AlertCore{
		cfg:      cfg,
		core:     core,
		minLevel: minLevel,
		client:   &http.Client{Timeout: timeout},
	}
}

func (a *AlertCore) Enabled(lvl zapcore.Level) bool {
	return a.core.Enabled(lvl)
}

func (a *AlertCore) With(fields []zapcore.Field) zapcore.Core {
	return &AlertCore{
		cfg:      a.cfg,
		core:     a.core.With(fields),
		minLevel: a.minLevel,
		client:   a.client,
	}
}

func (a *AlertCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if a.Enabled(entry.Level) {
		return a.core.Check(entry, checkedEntry).AddCore(entry, a)
	}
	return checkedEntry
}

func (a *AlertCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	shouldSend := false
	for _, f := range fields {
		if f.Key == common.KeyLogHookSendAlert && f.Type == zapcore.BoolType && f.Integer == 1 {
			shouldSend = true
			break
		}
	}
	if entry.Level >= a.minLevel && shouldSend {
		go a.sendWebhookAlert(entry, fields) // async so logging never blocks
	}
	return a.core.Write(entry, fields)
}

func (a *AlertCore) Sync() error {
	return a.core.Sync()
}

func (a *AlertCore) sendWebhookAlert(entry zapcore.Entry, fields []zapcore.Field) {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	delete(enc.Fields, common.KeyLogHookSendAlert)

	payload := map[string]interface{}{
		"level":   entry.Level.String(),
		"message": entry.Message,
		"fields":  enc.Fields,
		"time":    entry.Time.UTC().Format(time.RFC3339),
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return
	}

	resp, err := a.client.Post(a.cfg.WebhookURL, "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		fmt.Printf("failed to send alert webhook: %v\n", err)
		return
	}
	defer resp.Body.Close()
}
