package host

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
)

var titleColor = color.New(color.FgHiWhite, color.Bold)

// ConsoleNotifier displays notifications as lines on a writer.
type ConsoleNotifier struct {
	mu        sync.Mutex
	w         io.Writer
	useColors bool
	visible   []schema.Notification
}

var _ contract.Notifier = &ConsoleNotifier{} // Compile-time check

// NewConsoleNotifier returns a notifier writing to w.
func NewConsoleNotifier(w io.Writer, useColors bool) *ConsoleNotifier {
	return &ConsoleNotifier{w: w, useColors: useColors}
}

// Show prints n. A notification with the same tag replaces the visible one.
func (c *ConsoleNotifier) Show(_ context.Context, n schema.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.visible = slices.DeleteFunc(c.visible, func(v schema.Notification) bool { return v.Tag == n.Tag })
	c.visible = append(c.visible, n)

	title := n.Title
	if c.useColors {
		title = titleColor.Sprint(title)
	}
	actions := make([]string, len(n.Actions))
	for i, a := range n.Actions {
		actions[i] = "[" + a.Title + "]"
	}
	_, err := fmt.Fprintf(c.w, "%s: %s %s\n", title, n.Body, strings.Join(actions, " "))
	return err
}

// Close dismisses the notification with tag. Unknown tags are ignored.
func (c *ConsoleNotifier) Close(_ context.Context, tag string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = slices.DeleteFunc(c.visible, func(v schema.Notification) bool { return v.Tag == tag })
	return nil
}

// Visible returns the notifications currently shown.
func (c *ConsoleNotifier) Visible() []schema.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.visible)
}
