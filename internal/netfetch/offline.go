package netfetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
)

// ErrOffline is returned by Offline for every request.
var ErrOffline = errors.New("network is offline")

// Offline is a fetcher without connectivity. It lets the CLI preview offline behaviour.
type Offline struct{}

var _ contract.Fetcher = Offline{} // Compile-time check

// Fetch always fails with ErrOffline.
func (Offline) Fetch(_ context.Context, req *schema.Request) (*schema.Response, error) {
	return nil, fmt.Errorf("fetch %s: %w", req.URL, ErrOffline)
}
