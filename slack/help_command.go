package qfinslack

import (
	"sort"
	"strings"
)

type HelpHandler struct {
	commands map[string]CommandHandler
}

func NewHelpHandler(commands map[string]CommandHandler) *HelpHandler {
	return &HelpHandler{commands: commands}
}

func (h *HelpHandler) Usage() string {
	return "/help - Show this help message"
}

func (h *HelpHandler) Reply(args []string) (string, error) {
	var lines []string
	for name, cmd := range h.commands {
		if name == "/help" {
			continue
		}
		lines = append(lines, cmd.Usage())
	}
	sort.Strings(lines)
	return "Available commands:\n" + h.Usage() + "\n" + strings.Join(lines, "\n"), nil
}
