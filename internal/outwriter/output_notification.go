package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
)

// WriteNotificationResult outputs a notification, dispatching based on the output format configured.
func WriteNotificationResult(n schema.Notification, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, n)
		}, "Wrote JSON")
	case schema.CSVOut:
		header := []string{"tag", "title", "body", "icon", "badge", "url", "actions"}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				return cw.Write([]string{n.Tag, n.Title, n.Body, n.Icon, n.Badge, n.Data.URL, actionNames(n)})
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeNotificationText(w, n)
		}, "Wrote text")
	}
}

func writeNotificationText(w io.Writer, n schema.Notification) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n  icon: %s\n  badge: %s\n  url: %s\n  actions: %s\n",
		n.Title, n.Body, n.Icon, n.Badge, n.Data.URL, actionNames(n))
	return err
}

func actionNames(n schema.Notification) string {
	names := make([]string, len(n.Actions))
	for i, a := range n.Actions {
		names[i] = a.Action
	}
	return strings.Join(names, "|")
}
