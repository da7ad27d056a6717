package slog

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/fwojciec/freeze"
)

// Ensure LoggingRobots implements freeze.RobotsPolicy.
var _ freeze.RobotsPolicy = (*LoggingRobots)(nil)

// LoggingRobots logs every URL the wrapped policy disallows.
type LoggingRobots struct {
	next   freeze.RobotsPolicy
	logger *slog.Logger
}

// NewLoggingRobots creates a new LoggingRobots.
func NewLoggingRobots(next freeze.RobotsPolicy, logger *slog.Logger) *LoggingRobots {
	return &LoggingRobots{next: next, logger: logger}
}

func (r *LoggingRobots) Allowed(ctx context.Context, target *url.URL) bool {
	ok := r.next.Allowed(ctx, target)
	if !ok && target != nil {
		r.logger.Debug("robots disallow", "url", target.String())
	}
	return ok
}
