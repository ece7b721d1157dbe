package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypePermissionScan is the task type for the permission integrity scan.
	TaskTypePermissionScan = "authz:integrity_scan"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewPermissionScanTask constructs the periodic integrity-scan task. The
// payload is empty; the scan always covers the full permissions table.
func NewPermissionScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypePermissionScan, nil)
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		// Delivery goes through the local relay; SMTP wiring lives in ops.
		if logger != nil {
			logger.Info("send email",
				slog.String("to", payload.To),
				slog.String("subject", payload.Subject))
		}
		return nil
	}
}
