package mcp

import (
	"context"
	"sync"

	"github.com/mvp-joe/protolink/internal/workspace"
)

// collector is a Navigator without a user. It records the navigation target
// and notices, and declines every selection so that all candidates are
// returned to the caller.
type collector struct {
	mu       sync.Mutex
	target   *workspace.Location
	prompted bool
	notices  []notice
}

type notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func (c *collector) Navigate(ctx context.Context, loc workspace.Location) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = &loc
	return nil
}

func (c *collector) Pick(ctx context.Context, placeholder string, items []workspace.PickItem) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompted = true
	return -1, false, nil
}

func (c *collector) Notify(ctx context.Context, level workspace.NoticeLevel, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, notice{Level: level.String(), Message: message})
}
