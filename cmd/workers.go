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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/carterahq/cartera"
	"github.com/carterahq/cartera/config"
	redis_db "github.com/carterahq/cartera/internal/redis-db"
	"github.com/carterahq/cartera/internal/telemetry"
	"github.com/carterahq/cartera/model"

	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
)

const campaignTickTask = "campaign_tick"

// channelSender delivers one resolved notification to its channel. Providers
// (email, SMS) live outside this system; the sender hands the assignment to
// the integration webhook and the provider picks it up from there.
type channelSender interface {
	Send(ctx context.Context, batch *model.NotificationBatch, assignment *model.ClientAssignment) error
}

type webhookSender struct{}

func (webhookSender) Send(_ context.Context, batch *model.NotificationBatch, assignment *model.ClientAssignment) error {
	return cartera.SendWebhook(cartera.NewWebhook{
		Event: fmt.Sprintf("notification.%s", assignment.Channel),
		Payload: map[string]interface{}{
			"execution_id": batch.ExecutionID,
			"batch_id":     batch.BatchID,
			"tenant_id":    batch.TenantID,
			"assignment":   assignment,
		},
	})
}

func workerID() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "cartera-worker"
	}
	return hostname
}

// processBatch handles one notification batch from the dispatch queues. Every
// state transition is appended to the audit log; the log is the only record of
// batch state, so transitions are written before and after delivery rather
// than kept in memory.
func (b *carteraInstance) processBatch(ctx context.Context, t *asynq.Task) error {
	ctx, span := otel.Tracer("cartera.dispatch.worker").Start(ctx, "Process Batch From Redis Queue")
	defer span.End()

	var batch model.NotificationBatch
	if err := json.Unmarshal(t.Payload(), &batch); err != nil {
		logrus.Error(err)
		return err
	}

	worker := workerID()
	b.appendAudit(ctx, &batch, model.EventPickedUp, worker, "")
	b.appendAudit(ctx, &batch, model.EventProcessing, worker, "")

	var sender channelSender = webhookSender{}
	for i := range batch.Clients {
		if err := sender.Send(ctx, &batch, &batch.Clients[i]); err != nil {
			return b.handleBatchFailure(ctx, &batch, worker, err)
		}
	}

	b.appendAudit(ctx, &batch, model.EventCompleted, worker, "")
	telemetry.BatchesCompleted.Inc()
	log.Println(" [*] Batch Processed", batch.BatchID)
	return nil
}

// handleBatchFailure decides between deferring the batch for another attempt
// and failing it permanently. A deferred batch goes back to the queue via the
// asynq retry; an exhausted one is failed and sent to the dead letter queue.
func (b *carteraInstance) handleBatchFailure(ctx context.Context, batch *model.NotificationBatch, worker string, cause error) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	retryCount, _ := asynq.GetRetryCount(ctx)
	if retryCount < cfg.Queue.MaxRetryAttempts {
		logrus.Infof("Batch %s deferred for retry %d/%d: %v", batch.BatchID, retryCount, cfg.Queue.MaxRetryAttempts, cause)
		b.appendAudit(ctx, batch, model.EventDeferred, worker, cause.Error())
		return cause // This will trigger a retry
	}

	b.appendAudit(ctx, batch, model.EventFailed, worker, cause.Error())
	b.appendAudit(ctx, batch, model.EventDLQSent, worker, "max retry attempts reached")
	telemetry.BatchesFailed.Inc()
	telemetry.BatchesDeadLettered.Inc()

	webhookErr := cartera.SendWebhook(cartera.NewWebhook{
		Event:   "campaign.batch_dead_lettered",
		Payload: batch,
	})
	if webhookErr != nil {
		logrus.Error(webhookErr)
	}
	return asynq.SkipRetry
}

func (b *carteraInstance) appendAudit(ctx context.Context, batch *model.NotificationBatch, event model.AuditEvent, worker, details string) {
	err := b.cartera.AppendAuditEvent(ctx, &model.AuditLogEntry{
		ExecutionID: batch.ExecutionID,
		BatchID:     batch.BatchID,
		Event:       event,
		WorkerID:    worker,
		Details:     details,
	})
	if err != nil {
		logrus.Errorf("failed to append %s audit entry for batch %s: %v", event, batch.BatchID, err)
		return
	}
	telemetry.AuditEventsApplied.Inc()
}

// processCampaignTick closes out executions whose batches have all drained but
// whose worker died before marking them completed.
func (b *carteraInstance) processCampaignTick(ctx context.Context, _ *asynq.Task) error {
	if err := b.cartera.SweepDispatchingExecutions(ctx); err != nil {
		logrus.Errorf("campaign tick sweep failed: %v", err)
		return err
	}
	return nil
}

func initializeQueues() map[string]int {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return nil
	}

	queues := make(map[string]int)
	queues[cfg.Queue.WebhookQueue] = 3
	queues[campaignTickTask] = 1

	for i := 1; i <= cfg.Queue.NumberOfQueues; i++ {
		queueName := fmt.Sprintf("%s_%d", cfg.Queue.DispatchQueuePrefix, i)
		queues[queueName] = 1
	}
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		asynq.Config{
			Concurrency: 1,
			Queues:      queues,
		},
	), nil
}

func initializeTaskHandlers(b *carteraInstance, mux *asynq.ServeMux) {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return
	}

	// Register handlers for dispatch queues
	for i := 1; i <= cfg.Queue.NumberOfQueues; i++ {
		queueName := fmt.Sprintf("%s_%d", cfg.Queue.DispatchQueuePrefix, i)
		mux.HandleFunc(queueName, b.processBatch)
	}

	// Register handlers for other task types
	mux.HandleFunc(cfg.Queue.WebhookQueue, cartera.ProcessWebhook)
	mux.HandleFunc(campaignTickTask, b.processCampaignTick)
}

// workerCommands defines the "workers" command to start worker processes.
// The workers listen to the dispatch queues, the webhook queue, and the
// campaign tick queue.
func workerCommands(b *carteraInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start cartera workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			shutdown, err := initializeObservability(ctx, conf)
			if err != nil {
				log.Fatal(err)
			}
			if shutdown != nil {
				defer func() {
					if err := shutdown(ctx); err != nil {
						log.Printf("Error during shutdown: %v", err)
					}
				}()
			}

			queues := initializeQueues()

			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(b, mux)

			// Start asynqmon server for health checks and monitoring
			redisOption, _ := redis_db.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
			h := asynqmon.New(asynqmon.Options{
				RootPath: "/monitoring",
				RedisConnOpt: asynq.RedisClientOpt{
					Addr:      redisOption.Addr,
					Password:  redisOption.Password,
					DB:        redisOption.DB,
					TLSConfig: redisOption.TLSConfig,
				},
			})

			// Start asynqmon HTTP server in a new goroutine
			go func() {
				monitoringAddr := fmt.Sprintf(":%s", conf.Queue.MonitoringPort)
				log.Printf("Asynqmon server listening on %s/monitoring", monitoringAddr)
				if err := http.ListenAndServe(monitoringAddr, h); err != nil {
					log.Fatalf("could not start asynqmon server: %v", err)
				}
			}()

			// Register the recurring campaign tick in the tenant's local zone
			go startCampaignScheduler(conf, redisOption)

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}

// startCampaignScheduler runs the asynq scheduler that fires the daily
// campaign tick. The schedule is evaluated in the configured default
// timezone so a tick registered for 08:00 fires at 08:00 local wall-clock
// time across DST changes.
func startCampaignScheduler(conf *config.Configuration, redisOption *redis.Options) {
	location, err := time.LoadLocation(conf.Dispatch.DefaultTimezone)
	if err != nil {
		log.Printf("invalid dispatch timezone %q, scheduler not started: %v", conf.Dispatch.DefaultTimezone, err)
		return
	}

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		&asynq.SchedulerOpts{Location: location},
	)

	if _, err := scheduler.Register("0 8 * * *", asynq.NewTask(campaignTickTask, nil, asynq.Queue(campaignTickTask))); err != nil {
		log.Printf("could not register campaign tick: %v", err)
		return
	}

	if err := scheduler.Run(); err != nil {
		log.Printf("campaign scheduler stopped: %v", err)
	}
}
