package freeze

import (
	"context"
	"net/url"
)

// ShutdownFunc stops a server started by a BootFunc.
type ShutdownFunc func(ctx context.Context) error

// BootFunc starts a server listening on the given port. It must return only
// once the server accepts connections.
type BootFunc func(ctx context.Context, port int) (ShutdownFunc, error)

// Server identifies the site to crawl: either a running origin or a
// function that boots one. Origin takes precedence when both are set.
type Server struct {
	Origin string
	Boot   BootFunc
}

// Validate returns an error if neither an origin nor a boot function is set.
func (s Server) Validate() error {
	if s.Origin == "" && s.Boot == nil {
		return Errorf(EINVALID, "server origin or boot function required")
	}
	if s.Origin != "" {
		if _, err := ParseURL(s.Origin, nil); err != nil {
			return err
		}
	}
	return nil
}

// RoutesFunc produces seed routes once the origin is known.
type RoutesFunc func(ctx context.Context, origin *url.URL) ([]string, error)

// Routes are the seed paths of a crawl. The static list and the result of
// Func (invoked once per crawl session) are concatenated.
type Routes struct {
	Static []string
	Func   RoutesFunc
}
