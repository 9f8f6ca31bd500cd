package notification

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/carterahq/cartera/config"
)

func TestSlackNotification(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	config.MockConfig(&config.Configuration{
		Notification: config.Notification{
			Slack: config.SlackWebhook{WebhookUrl: "https://hooks.slack.example/services/T000/B000"},
		},
	})

	httpmock.RegisterResponder("POST", "https://hooks.slack.example/services/T000/B000",
		httpmock.NewStringResponder(http.StatusOK, `{"ok": true}`))

	SlackNotification(errors.New("threshold store unavailable"))

	info := httpmock.GetCallCountInfo()
	if info["POST https://hooks.slack.example/services/T000/B000"] != 1 {
		t.Errorf("expected one slack webhook call, got %v", info)
	}
}
