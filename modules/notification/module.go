package notification

import (
	"quorum-booking/modules/notification/service"
	"quorum-booking/modules/notification/worker"

	"github.com/hibiken/asynq"
)

// Init returns the dispatcher booking engines hand their records to. A nil
// client means no queue is configured and records are only logged.
func Init(client *asynq.Client) service.Dispatcher {
	if client == nil {
		return service.LogDispatcher{}
	}
	return service.NewQueueDispatcher(client)
}

// NewWorkerMux builds the task mux the notice worker serves.
func NewWorkerMux() *asynq.ServeMux {
	return worker.NewServeMux(worker.NewNoticeHandler(worker.LogDeliverer{}))
}
