// Package host provides in-process implementations of the collaborators a worker talks to:
// client windows, notification display, push subscriptions and payment sync.
package host

import (
	"context"
	"log"
	"slices"
	"sync"

	"github.com/huangsam/swagent/internal/contract"
)

// ClientRegistry tracks the worker version controlling clients and the windows it opened.
type ClientRegistry struct {
	mu         sync.Mutex
	controller string
	opened     []string
	logger     *log.Logger
}

var _ contract.Clients = &ClientRegistry{} // Compile-time check

// NewClientRegistry returns an empty registry logging to logger.
func NewClientRegistry(logger *log.Logger) *ClientRegistry {
	return &ClientRegistry{logger: logger}
}

// Claim makes version the controller of every client.
func (c *ClientRegistry) Claim(_ context.Context, version string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller != version {
		c.logger.Printf("clients claimed by %s", version)
	}
	c.controller = version
	return nil
}

// OpenWindow records a window opened at url.
func (c *ClientRegistry) OpenWindow(_ context.Context, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened = append(c.opened, url)
	c.logger.Printf("open window %s", url)
	return nil
}

// Controller returns the version that last claimed the clients.
func (c *ClientRegistry) Controller() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

// Opened returns the URLs of opened windows, oldest first.
func (c *ClientRegistry) Opened() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.opened)
}
