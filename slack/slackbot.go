// Package qfinslack answers pricing slash commands over Slack socket mode.
package qfinslack

import (
	"context"
	"log/slog"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
)

type SlackBot struct {
	client       *slack.Client
	socketClient *socketmode.Client
	eventHandler *Handler
	logger       *slog.Logger
}

func NewSlackBot(appToken, botToken string, defaults Defaults, logger *slog.Logger, debug bool) *SlackBot {
	client := slack.New(
		botToken,
		slack.OptionAppLevelToken(appToken),
	)

	socketClient := socketmode.New(
		client,
		socketmode.OptionDebug(debug),
		socketmode.OptionLog(slog.NewLogLogger(logger.With("component", "socketmode").Handler(), slog.LevelDebug)),
	)

	return &SlackBot{
		client:       client,
		socketClient: socketClient,
		eventHandler: NewHandler(defaults, logger),
		logger:       logger,
	}
}

// Start serves slash commands until ctx is cancelled or the connection fails.
func (sb *SlackBot) Start(ctx context.Context) error {
	go func() {
		for evt := range sb.socketClient.Events {
			switch evt.Type {
			case socketmode.EventTypeConnecting:
				sb.logger.Info("connecting to slack")
			case socketmode.EventTypeConnected:
				sb.logger.Info("connected to slack")
			case socketmode.EventTypeSlashCommand:
				evt := evt
				if err := sb.eventHandler.Handle(&evt, sb.socketClient); err != nil {
					sb.logger.Error("slash command failed", "error", err)
				}
			}
		}
	}()

	return sb.socketClient.RunContext(ctx)
}
