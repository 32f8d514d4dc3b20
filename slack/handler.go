package qfinslack

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/bcdannyboy/qfin/report"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
)

// Client is the part of *socketmode.Client the handlers use.
type Client interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
	Ack(req socketmode.Request, payload ...interface{})
}

// CommandHandler turns a slash command's arguments into a reply.
type CommandHandler interface {
	Usage() string
	Reply(args []string) (string, error)
}

type Handler struct {
	commands map[string]CommandHandler
	logger   *slog.Logger
}

func NewHandler(defaults Defaults, logger *slog.Logger) *Handler {
	h := &Handler{
		commands: map[string]CommandHandler{
			"/price":    NewPriceHandler(defaults),
			"/strategy": NewStrategyHandler(defaults),
		},
		logger: logger,
	}
	h.commands["/help"] = NewHelpHandler(h.commands)
	return h
}

// Handle acknowledges the command and posts the reply, or the usage line when the
// arguments are rejected.
func (h *Handler) Handle(evt *socketmode.Event, client Client) error {
	data, ok := evt.Data.(slack.SlashCommand)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", evt.Data)
	}
	if evt.Request != nil {
		client.Ack(*evt.Request)
	}

	cmd, ok := h.commands[data.Command]
	if !ok {
		h.logger.Warn("unknown slash command", "command", data.Command, "user", data.UserID)
		return nil
	}

	text, err := cmd.Reply(fieldsOf(data.Text))
	if err != nil {
		h.logger.Info("rejected slash command", "command", data.Command, "text", data.Text, "error", err)
		text = fmt.Sprintf("%v\nUsage: %s", err, cmd.Usage())
	} else {
		h.logger.Debug("answered slash command", "command", data.Command, "user", data.UserID)
	}

	_, _, err = client.PostMessage(data.ChannelID, slack.MsgOptionText(text, false))
	return err
}

func codeBlock(tables ...report.Table) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("```\n")
	for i, t := range tables {
		if i > 0 {
			buf.WriteString("\n")
		}
		if err := t.Render(&buf); err != nil {
			return "", err
		}
	}
	buf.WriteString("```")
	return buf.String(), nil
}
