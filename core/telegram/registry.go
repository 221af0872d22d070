package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/m3rciful/weatherbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler and menu metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// Hidden commands are routed but not published in the command menu.
	Hidden bool
}

// Registry holds bot commands and the free-text handler.
type Registry struct {
	commands map[string]Command
	text     tele.HandlerFunc
	log      *slog.Logger
}

// NewRegistry creates an empty Registry. A nil log falls back to slog.Default.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{commands: make(map[string]Command), log: log}
}

// RegisterCommand adds a command; name must carry the leading slash.
// Invalid or duplicate registrations are logged and ignored.
func (r *Registry) RegisterCommand(name string, cmd Command) {
	if r == nil {
		return
	}
	reason := ""
	switch {
	case name == "" || cmd.Handler == nil || cmd.Description == "":
		reason = "invalid"
	case name[0] != '/':
		reason = "no_slash_prefix"
	}
	if reason != "" {
		logger.LogEvent(context.Background(), r.log, slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", reason),
		)
		return
	}
	if _, exists := r.commands[name]; exists {
		logger.LogEvent(context.Background(), r.log, slog.LevelWarn, "register.command.duplicate",
			slog.String("name", name),
		)
		return
	}
	r.commands[name] = cmd
}

// ListCommands returns the commands sorted by name, optionally without hidden ones.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for name, meta := range r.commands {
		if visibleOnly && meta.Hidden {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// LookupCommand finds a command by name with or without the slash.
func (r *Registry) LookupCommand(name string) (string, Command, bool) {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	cmd, ok := r.commands[name]
	return name, cmd, ok
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]Command {
	if r == nil {
		return nil
	}
	return r.commands
}

// SetTextHandler sets the handler for plain text that is not a command.
func (r *Registry) SetTextHandler(h tele.HandlerFunc) {
	r.text = h
}

// TextHandler returns the plain text handler.
func (r *Registry) TextHandler() tele.HandlerFunc {
	if r == nil {
		return nil
	}
	return r.text
}

// InitBotCommands publishes the visible commands as the Telegram command menu.
// It logs only success; a failure is returned unlogged.
func InitBotCommands(bot *tele.Bot, reg *Registry) error {
	cmds := reg.ListCommands(true)
	if err := bot.SetCommands(cmds); err != nil {
		return fmt.Errorf("telegram: set commands: %w", err)
	}
	logger.LogEvent(context.Background(), reg.log, slog.LevelInfo, "register.commands.set",
		slog.String("status", "ok"),
		slog.Int("commands", len(cmds)),
	)
	return nil
}
