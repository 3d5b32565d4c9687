package queue

import (
	"fmt"
	"os"

	"quorum-booking/core/cache"
	"quorum-booking/core/constants"
	"quorum-booking/core/logger"

	"github.com/hibiken/asynq"
)

func redisOpt(cfg cache.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewClient(cfg cache.RedisConfig) *asynq.Client {
	return asynq.NewClient(redisOpt(cfg))
}

func NewServer(cfg cache.RedisConfig, concurrency int) *asynq.Server {
	if concurrency <= 0 {
		concurrency = 1
	}
	return asynq.NewServer(redisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			constants.QueueNotices: 1,
		},
		Logger: asynqLogger{},
	})
}

// asynqLogger routes asynq's printf-less logging through the process logger.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...interface{}) { logger.Debug("Queue:" + fmt.Sprint(args...)) }
func (asynqLogger) Info(args ...interface{})  { logger.Info("Queue:" + fmt.Sprint(args...)) }
func (asynqLogger) Warn(args ...interface{})  { logger.Warn("Queue:" + fmt.Sprint(args...)) }
func (asynqLogger) Error(args ...interface{}) { logger.Error("Queue:" + fmt.Sprint(args...)) }
func (asynqLogger) Fatal(args ...interface{}) {
	logger.Error("Queue:Fatal:" + fmt.Sprint(args...))
	os.Exit(1)
}
