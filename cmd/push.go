package cmd

import (
	"os"

	"github.com/huangsam/swagent/core"
	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/internal/netfetch"
	"github.com/huangsam/swagent/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// pushCmd delivers a push message to a worker.
var pushCmd = &cobra.Command{
	Use:   "push [payload]",
	Short: "Render a push message as the notification the worker shows",
	Long: `Deliver a push message to a worker and print the resulting notification.

A JSON object payload overrides the default title, body, icon, badge,
vibration pattern and data. Any other payload becomes the notification body.
Without a payload the default notification is shown.

Examples:
  # Default notification
  swagent push

  # Plain text body
  swagent push "Your bundle expires tomorrow"

  # Full override, then simulate a tap on "view"
  swagent push '{"title":"Payment received","data":{"url":"/billing/"}}' --click view`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		storage, err := cacheStorage()
		if err != nil {
			contract.LogFatal("Cannot open cache", err)
		}
		var data []byte
		if len(args) == 1 {
			data = []byte(args[0])
		}

		w := newWorker(storage, netfetch.Offline{}, contract.NewLogger(), os.Stderr)
		out, err := w.Dispatch(rootCtx, core.PushEvt(data))
		if err != nil {
			contract.LogFatal("Push failed", err)
		}

		if action := viper.GetString("click"); action != "" {
			if _, err := w.Dispatch(rootCtx, core.ClickEvt(*out.Notification, action)); err != nil {
				contract.LogFatal("Notification click failed", err)
			}
		}
		if err := outwriter.NewOutWriter().WriteNotification(*out.Notification, cfg); err != nil {
			contract.LogFatal("Failed to write notification", err)
		}
	},
}
