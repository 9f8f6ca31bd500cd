/*
Copyright 2025 Cartera Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cartera

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log"

	"github.com/hibiken/asynq"

	"github.com/carterahq/cartera/config"
	redis_db "github.com/carterahq/cartera/internal/redis-db"
	"github.com/carterahq/cartera/model"
)

// Queue represents a queue for handling dispatch tasks.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// NewQueue initializes a new Queue instance with the provided configuration.
//
// Parameters:
// - conf *config.Configuration: The configuration for the queue.
//
// Returns:
// - *Queue: A pointer to the newly created Queue instance.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB, TLSConfig: redisOption.TLSConfig}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

// EnqueueBatch enqueues a notification batch for dispatch.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - batch *model.NotificationBatch: The batch to be enqueued.
//
// Returns:
// - error: An error if the batch could not be enqueued.
func (q *Queue) EnqueueBatch(ctx context.Context, batch *model.NotificationBatch) error {
	ctx, span := tracer.Start(ctx, "Adding Batch To Redis Queue")
	defer span.End()

	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(batch)
	if err != nil {
		return err
	}
	info, err := q.Client.EnqueueContext(ctx, q.getTask(cfg, batch, payload), asynq.MaxRetry(cfg.Queue.MaxRetryAttempts))
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued batch: %+v", batch.BatchID)

	return nil
}

// getTask generates a task for a batch and assigns it to a specific queue based on the batch ID.
// Batches are evenly distributed across the dispatch queues by hashing the batch ID, and the
// batch ID doubles as the task ID so a retried enqueue of the same batch is deduplicated
// instead of notifying clients twice.
//
// Parameters:
// - cfg *config.Configuration: The loaded configuration.
// - batch *model.NotificationBatch: The batch for which to generate the task.
// - payload []byte: The payload for the task, typically the serialized batch data.
//
// Returns:
// - *asynq.Task: The generated task ready to be enqueued.
func (q *Queue) getTask(cfg *config.Configuration, batch *model.NotificationBatch, payload []byte) *asynq.Task {
	queueIndex := hashBatchID(batch.BatchID) % cfg.Queue.NumberOfQueues
	queueName := fmt.Sprintf("%s_%d", cfg.Queue.DispatchQueuePrefix, queueIndex+1)

	taskOptions := []asynq.Option{asynq.TaskID(batch.BatchID), asynq.Queue(queueName)}
	return asynq.NewTask(queueName, payload, taskOptions...)
}

// hashBatchID returns a consistent hash value for a string batch ID.
//
// Parameters:
// - batchID string: The batch ID to hash.
//
// Returns:
// - int: The hash value of the batch ID.
func hashBatchID(batchID string) int {
	hasher := fnv.New32a()
	_, _ = hasher.Write([]byte(batchID))
	return int(hasher.Sum32())
}

// GetBatchFromQueue retrieves a batch from the dispatch queues by its ID.
//
// Parameters:
// - batchID string: The ID of the batch to retrieve.
//
// Returns:
// - *model.NotificationBatch: A pointer to the NotificationBatch if found.
// - error: An error if the batch could not be retrieved.
func (q *Queue) GetBatchFromQueue(batchID string) (*model.NotificationBatch, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	// Iterate over all dispatch queues
	for i := 1; i <= cfg.Queue.NumberOfQueues; i++ {
		queueName := fmt.Sprintf("%s_%d", cfg.Queue.DispatchQueuePrefix, i)
		task, err := q.Inspector.GetTaskInfo(queueName, batchID)
		if err == nil && task != nil {
			var batch model.NotificationBatch
			if err := json.Unmarshal(task.Payload, &batch); err != nil {
				return nil, err
			}
			return &batch, nil
		}
	}
	return nil, nil // Return nil if batch is not found in any queue
}
