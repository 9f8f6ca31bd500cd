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

package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/scheduler/types"

	"github.com/carterahq/cartera/config"
	"github.com/carterahq/cartera/model"
)

// SchedulerAPI is the subset of the EventBridge Scheduler client used here.
type SchedulerAPI interface {
	CreateSchedule(ctx context.Context, params *scheduler.CreateScheduleInput, optFns ...func(*scheduler.Options)) (*scheduler.CreateScheduleOutput, error)
	DeleteSchedule(ctx context.Context, params *scheduler.DeleteScheduleInput, optFns ...func(*scheduler.Options)) (*scheduler.DeleteScheduleOutput, error)
}

// CampaignScheduler registers one-shot dispatch triggers with EventBridge
// Scheduler. Instants are converted to local wall-clock cron expressions so
// the schedule fires at the tenant's local time.
type CampaignScheduler struct {
	client SchedulerAPI
	conf   config.ScheduleConfig
}

// CampaignTrigger is the payload delivered to the dispatch target when a
// schedule fires.
type CampaignTrigger struct {
	TenantID    string `json:"tenant_id"`
	ExecutionID string `json:"execution_id"`
	Timezone    string `json:"timezone"`
}

// NewCampaignScheduler builds a CampaignScheduler from the loaded
// configuration. When LocalEndpoint is set the client targets it instead of
// the AWS endpoint, which is how local development against localstack works.
func NewCampaignScheduler(ctx context.Context) (*CampaignScheduler, error) {
	conf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(conf.Schedule.Region),
	}
	if conf.Schedule.AccessKeyId != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.Schedule.AccessKeyId, conf.Schedule.SecretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := scheduler.NewFromConfig(cfg, func(o *scheduler.Options) {
		if conf.Schedule.LocalEndpoint != "" {
			o.BaseEndpoint = aws.String(conf.Schedule.LocalEndpoint)
		}
	})

	return &CampaignScheduler{client: client, conf: conf.Schedule}, nil
}

// NewCampaignSchedulerWithClient builds a CampaignScheduler around an existing
// client. Used in tests.
func NewCampaignSchedulerWithClient(client SchedulerAPI, conf config.ScheduleConfig) *CampaignScheduler {
	return &CampaignScheduler{client: client, conf: conf}
}

// ScheduleDispatch registers a one-shot schedule that triggers the dispatch
// target at the given instant, expressed in the tenant's timezone. The
// schedule deletes itself after firing.
func (s *CampaignScheduler) ScheduleDispatch(ctx context.Context, trigger CampaignTrigger, runAt time.Time) (string, error) {
	expression, err := model.ToLocalCron(runAt, trigger.Timezone)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(trigger)
	if err != nil {
		return "", err
	}

	name := scheduleName(trigger.ExecutionID)
	_, err = s.client.CreateSchedule(ctx, &scheduler.CreateScheduleInput{
		Name:                       aws.String(name),
		GroupName:                  aws.String(s.conf.GroupName),
		ScheduleExpression:         aws.String(expression),
		ScheduleExpressionTimezone: aws.String(trigger.Timezone),
		ActionAfterCompletion:      types.ActionAfterCompletionDelete,
		FlexibleTimeWindow: &types.FlexibleTimeWindow{
			Mode: types.FlexibleTimeWindowModeOff,
		},
		Target: &types.Target{
			Arn:     aws.String(s.conf.TargetArn),
			RoleArn: aws.String(s.conf.RoleArn),
			Input:   aws.String(string(payload)),
		},
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

// CancelDispatch removes a previously registered schedule.
func (s *CampaignScheduler) CancelDispatch(ctx context.Context, executionID string) error {
	_, err := s.client.DeleteSchedule(ctx, &scheduler.DeleteScheduleInput{
		Name:      aws.String(scheduleName(executionID)),
		GroupName: aws.String(s.conf.GroupName),
	})
	return err
}

func scheduleName(executionID string) string {
	return fmt.Sprintf("cartera-dispatch-%s", executionID)
}
