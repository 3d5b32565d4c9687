package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"quorum-booking/core/constants"
	"quorum-booking/core/logger"
	"quorum-booking/modules/notification/dto"

	"github.com/hibiken/asynq"
)

// Deliverer hands a notice to its recipient.
type Deliverer interface {
	Deliver(ctx context.Context, notice dto.NoticePayload) error
}

// LogDeliverer writes notices to the process log.
type LogDeliverer struct{}

func (LogDeliverer) Deliver(_ context.Context, n dto.NoticePayload) error {
	logger.Info("Notice:Delivered",
		"invitation_id", n.InvitationID,
		"booking_id", n.BookingID,
		"recipient_id", n.RecipientID,
		"kind", n.Kind,
		"message", n.Message,
	)
	return nil
}

type NoticeHandler struct {
	deliverer Deliverer
}

func NewNoticeHandler(d Deliverer) *NoticeHandler {
	return &NoticeHandler{deliverer: d}
}

func (h *NoticeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var notice dto.NoticePayload
	if err := json.Unmarshal(t.Payload(), &notice); err != nil {
		logger.Error("NoticeHandler:ProcessTask:Decode", "error", err)
		return fmt.Errorf("malformed notice payload: %v: %w", err, asynq.SkipRetry)
	}
	if notice.RecipientID == "" {
		return fmt.Errorf("notice %s has no recipient: %w", notice.InvitationID, asynq.SkipRetry)
	}
	return h.deliverer.Deliver(ctx, notice)
}

// NewServeMux routes notice tasks to h.
func NewServeMux(h *NoticeHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(constants.TaskTypeDeliverNotice, h)
	return mux
}
