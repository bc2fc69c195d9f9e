package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/interfaces"
	"github.com/secmon-lab/ifrs-modeler/pkg/service/slack"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for change notifications
type Slack struct {
	botToken  string
	channelID string
	baseURL   string
}

func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack bot token for change notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("IFRS_MODELER_SLACK_BOT_TOKEN"),
			Destination: &s.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Channel receiving save, validation and lock notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("IFRS_MODELER_SLACK_CHANNEL_ID"),
			Destination: &s.channelID,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Public URL of the admin UI used for links in notifications",
			Sources:     cli.EnvVars("IFRS_MODELER_BASE_URL"),
			Destination: &s.baseURL,
		},
	}
}

func (s *Slack) IsConfigured() bool {
	return s.botToken != ""
}

// Configure returns the change notifier, or nil when Slack is not configured
func (s *Slack) Configure(ctx context.Context) (interfaces.Notifier, error) {
	if !s.IsConfigured() {
		logging.Default().Info("Slack notifications disabled")
		return nil, nil
	}
	if s.channelID == "" {
		return nil, goerr.New("slack-channel-id is required when slack-bot-token is set")
	}

	svc, err := slack.New(s.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create slack service")
	}

	// A wrong channel should not stop the server
	name, err := svc.GetChannelName(ctx, s.channelID)
	if err != nil {
		logging.Default().Warn("Failed to resolve Slack channel", "channel_id", s.channelID, "error", err)
	}

	notifier, err := slack.NewNotifier(svc, s.channelID, s.baseURL)
	if err != nil {
		return nil, err
	}
	logging.Default().Info("Slack notifications enabled", "channel_id", s.channelID, "channel", name)
	return notifier, nil
}
