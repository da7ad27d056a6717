package crawl

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fwojciec/freeze"
)

// ServeHandler returns a BootFunc that serves h on the loopback interface.
// The listener is bound before the BootFunc returns, so the server accepts
// connections as soon as the crawler resolves its origin.
func ServeHandler(h http.Handler) freeze.BootFunc {
	return func(_ context.Context, port int) (freeze.ShutdownFunc, error) {
		ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		if err != nil {
			return nil, fmt.Errorf("listen on port %d: %w", port, err)
		}
		srv := &http.Server{
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() { _ = srv.Serve(ln) }()
		return srv.Shutdown, nil
	}
}

// freePort asks the kernel for an unused loopback TCP port.
func freePort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("allocate port: %w", err)
	}
	defer ln.Close()
	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		return 0, freeze.Errorf(freeze.EINTERNAL, "unexpected listener address %s", ln.Addr())
	}
	return addr.Port, nil
}
