package audit

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestProcessTaskAuditsOrder(t *testing.T) {
	h := TaskHandler{
		Svc:    &Service{Bubble: fixtureUpstream(t, graphRecords())},
		Logger: zerolog.Nop(),
	}
	task, err := NewAuditTask("o1")
	require.NoError(t, err)
	require.NoError(t, h.ProcessTask(context.Background(), task))
}

func TestProcessTaskSkipsRetryOnBadPayload(t *testing.T) {
	h := TaskHandler{Logger: zerolog.Nop()}
	err := h.ProcessTask(context.Background(), asynq.NewTask(TaskAuditOrder, []byte("not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestProcessTaskRetriesUpstreamFailure(t *testing.T) {
	h := TaskHandler{
		Svc:    &Service{Bubble: fixtureUpstream(t, map[string]string{})},
		Logger: zerolog.Nop(),
	}
	task, err := NewAuditTask("o1")
	require.NoError(t, err)
	err = h.ProcessTask(context.Background(), task)
	require.Error(t, err)
	require.NotErrorIs(t, err, asynq.SkipRetry)
}
