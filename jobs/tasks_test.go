package jobs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSendEmailTask(t *testing.T) {
	task, err := NewSendEmailTask(SendEmailPayload{To: "a@b.c", Subject: "Welcome"})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeSendEmail, task.Type())

	var payload SendEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "a@b.c", payload.To)
}

func TestHandleSendEmailTaskSkipsBadPayload(t *testing.T) {
	handler := HandleSendEmailTask(nil)
	task := asynq.NewTask(TaskTypeSendEmail, []byte("{not json"))

	err := handler(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleSendEmailTask(t *testing.T) {
	handler := HandleSendEmailTask(nil)
	task, err := NewSendEmailTask(SendEmailPayload{To: "a@b.c", Subject: "Welcome", Body: "hi"})
	require.NoError(t, err)

	assert.NoError(t, handler(context.Background(), task))
}
