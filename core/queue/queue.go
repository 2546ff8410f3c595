package queue

import (
	"context"
	"encoding/json"

	"allmeet-api/core/config"
	"allmeet-api/core/logger"

	"github.com/hibiken/asynq"
)

// Queue wraps the asynq client and in-process worker used for background
// notification delivery.
type Queue struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewQueue(cfg config.RedisConfig) *Queue {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	return &Queue{
		client: asynq.NewClient(redisOpt),
		server: asynq.NewServer(redisOpt, asynq.Config{
			Concurrency: 5,
		}),
		mux: asynq.NewServeMux(),
	}
}

func (q *Queue) Enqueue(ctx context.Context, taskType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = q.client.EnqueueContext(ctx, asynq.NewTask(taskType, data), asynq.MaxRetry(3))
	return err
}

func (q *Queue) Handle(taskType string, handler func(context.Context, *asynq.Task) error) {
	q.mux.HandleFunc(taskType, handler)
}

func (q *Queue) Start() error {
	return q.server.Start(q.mux)
}

func (q *Queue) Shutdown() {
	q.server.Shutdown()
	if err := q.client.Close(); err != nil {
		logger.Error("Queue:Shutdown:CloseClient", err)
	}
}
