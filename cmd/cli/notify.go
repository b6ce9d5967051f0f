package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamed0406/healthcheck/internal/config"
	"github.com/hamed0406/healthcheck/internal/health"
	"github.com/hamed0406/healthcheck/internal/notify"
)

var notifyCmd = &cobra.Command{
	Use:       "notify success|error <message>",
	Short:     "Send a test notification through the configured transports",
	Args:      cobra.MinimumNArgs(2),
	ValidArgs: []string{"success", "error"},
	RunE:      runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
	var kind health.EventKind
	switch args[0] {
	case "success":
		kind = health.EventRecovered
	case "error":
		kind = health.EventAlert
	default:
		return fmt.Errorf("unknown notification kind %q, want success or error", args[0])
	}

	f, err := config.Load(configPath)
	if err != nil {
		return err
	}
	transport := transports(f, config.FromEnv().SlackWebhook)
	if len(transport) == 0 {
		return errors.New("no transport configured: set telegram_token and telegram_chat_id, or SLACK_WEBHOOK_URL")
	}

	ev := notify.NewEvent("cli", "CLI", "manual notification",
		health.Decision{Kind: kind, Detail: strings.Join(args[1:], " ")}, 0, time.Now().UTC())
	title, text := notify.Compose(ev)
	if err := transport.Send(cmd.Context(), title, text); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), passed.Render("sent"), title)
	return nil
}

func transports(f *config.File, slackWebhook string) notify.Multi {
	var m notify.Multi
	if tg := notify.NewTelegram(f.TelegramToken, f.TelegramChatID); tg != nil {
		m = append(m, tg)
	}
	if sl := notify.NewSlack(slackWebhook); sl != nil {
		m = append(m, sl)
	}
	return m
}
