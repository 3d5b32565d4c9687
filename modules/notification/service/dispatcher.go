package service

import (
	"context"
	"encoding/json"
	"fmt"

	"quorum-booking/core/constants"
	"quorum-booking/core/logger"
	"quorum-booking/modules/booking/entity"
	"quorum-booking/modules/notification/dto"

	"github.com/hibiken/asynq"
)

// Dispatcher fans committed records out for delivery. Delivery is best
// effort: failures are logged and never reach the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, records []entity.Invitation)
}

type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type QueueDispatcher struct {
	client Enqueuer
}

func NewQueueDispatcher(client Enqueuer) *QueueDispatcher {
	return &QueueDispatcher{client: client}
}

// NewNoticeTask encodes one record as a delivery task. The invitation id is
// the task id so a record is queued at most once.
func NewNoticeTask(inv entity.Invitation) (*asynq.Task, error) {
	payload, err := json.Marshal(dto.NewNoticePayload(inv))
	if err != nil {
		return nil, fmt.Errorf("failed to encode notice %s: %w", inv.ID, err)
	}
	return asynq.NewTask(constants.TaskTypeDeliverNotice, payload,
		asynq.Queue(constants.QueueNotices),
		asynq.MaxRetry(constants.NoticeMaxRetry),
		asynq.TaskID(inv.ID),
	), nil
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, records []entity.Invitation) {
	for _, inv := range records {
		task, err := NewNoticeTask(inv)
		if err != nil {
			logger.Error("QueueDispatcher:Dispatch:Encode", "invitation_id", inv.ID, "error", err)
			continue
		}
		info, err := d.client.EnqueueContext(ctx, task)
		if err != nil {
			logger.Warn("QueueDispatcher:Dispatch:Enqueue", "invitation_id", inv.ID, "error", err)
			continue
		}
		logger.Debug("QueueDispatcher:Dispatch:Queued", "invitation_id", inv.ID, "task_id", info.ID, "queue", info.Queue)
	}
}

// LogDispatcher only records that a notice was produced. Used when no queue
// is configured.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(_ context.Context, records []entity.Invitation) {
	for _, inv := range records {
		logger.Info("LogDispatcher:Dispatch",
			"invitation_id", inv.ID,
			"recipient_id", inv.RecipientID,
			"kind", inv.Kind,
			"status", inv.Status,
		)
	}
}
