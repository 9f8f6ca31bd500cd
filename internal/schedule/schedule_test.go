package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/stretchr/testify/assert"

	"github.com/carterahq/cartera/config"
)

type fakeSchedulerAPI struct {
	created *scheduler.CreateScheduleInput
	deleted *scheduler.DeleteScheduleInput
}

func (f *fakeSchedulerAPI) CreateSchedule(_ context.Context, params *scheduler.CreateScheduleInput, _ ...func(*scheduler.Options)) (*scheduler.CreateScheduleOutput, error) {
	f.created = params
	return &scheduler.CreateScheduleOutput{}, nil
}

func (f *fakeSchedulerAPI) DeleteSchedule(_ context.Context, params *scheduler.DeleteScheduleInput, _ ...func(*scheduler.Options)) (*scheduler.DeleteScheduleOutput, error) {
	f.deleted = params
	return &scheduler.DeleteScheduleOutput{}, nil
}

func TestScheduleDispatchLocalWallClock(t *testing.T) {
	fake := &fakeSchedulerAPI{}
	s := NewCampaignSchedulerWithClient(fake, config.ScheduleConfig{
		GroupName: "cartera",
		TargetArn: "arn:aws:lambda:us-east-1:000000000000:function:dispatch",
		RoleArn:   "arn:aws:iam::000000000000:role/cartera-scheduler",
	})

	runAt := time.Date(2026, 2, 26, 15, 7, 0, 0, time.UTC)
	name, err := s.ScheduleDispatch(context.Background(), CampaignTrigger{
		TenantID:    "tenant_1",
		ExecutionID: "exec_abc",
		Timezone:    "America/Bogota",
	}, runAt)

	assert.NoError(t, err)
	assert.Equal(t, "cartera-dispatch-exec_abc", name)
	assert.NotNil(t, fake.created)
	// 15:07 UTC is 10:07 in Bogota.
	assert.Equal(t, "cron(7 10 26 2 ? 2026)", *fake.created.ScheduleExpression)
	assert.Equal(t, "America/Bogota", *fake.created.ScheduleExpressionTimezone)
	assert.Equal(t, "cartera", *fake.created.GroupName)
	assert.Contains(t, *fake.created.Target.Input, `"execution_id":"exec_abc"`)
}

func TestScheduleDispatchInvalidTimezone(t *testing.T) {
	fake := &fakeSchedulerAPI{}
	s := NewCampaignSchedulerWithClient(fake, config.ScheduleConfig{})

	_, err := s.ScheduleDispatch(context.Background(), CampaignTrigger{
		ExecutionID: "exec_abc",
		Timezone:    "Mars/Olympus",
	}, time.Now())

	assert.Error(t, err)
	assert.Nil(t, fake.created)
}

func TestCancelDispatch(t *testing.T) {
	fake := &fakeSchedulerAPI{}
	s := NewCampaignSchedulerWithClient(fake, config.ScheduleConfig{GroupName: "cartera"})

	err := s.CancelDispatch(context.Background(), "exec_abc")
	assert.NoError(t, err)
	assert.Equal(t, "cartera-dispatch-exec_abc", *fake.deleted.Name)
}
