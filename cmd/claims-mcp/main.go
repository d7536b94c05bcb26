// Command claims-mcp exposes the claim tools to MCP clients over stdio or
// streamable HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sweetpotato0/ai-claims/app"
	"github.com/sweetpotato0/ai-claims/config"
	"github.com/sweetpotato0/ai-claims/mcpserver"
	"github.com/sweetpotato0/ai-claims/pkg/logging"
	"github.com/sweetpotato0/ai-claims/pkg/telemetry"
)

func main() {
	transport := flag.String("transport", "stdio", "stdio or http")
	host := flag.String("host", "127.0.0.1", "host to bind in http mode")
	port := flag.Int("port", 8090, "port to bind in http mode")
	path := flag.String("path", "/mcp", "HTTP path of the streamable endpoint")
	flag.Parse()

	// stdout carries the protocol in stdio mode.
	logging.SetLogger(logging.NewFromEnv(os.Stderr))

	if err := run(*transport, fmt.Sprintf("%s:%d", *host, *port), *path); err != nil {
		logging.Logger().Error("claims-mcp stopped", "error", err)
		os.Exit(1)
	}
}

func run(transport, addr, path string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := logging.WithComponent("claims-mcp")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{ServiceName: mcpserver.ServerName + "-mcp"})
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	core, err := app.NewCore(ctx, cfg)
	if err != nil {
		return err
	}
	defer core.Close()

	server, err := mcpserver.NewServer(ctx, core.Toolset)
	if err != nil {
		return err
	}

	switch transport {
	case "stdio":
		logger.Info("serving MCP over stdio")
		return server.Run(ctx, &mcp.StdioTransport{})
	case "http":
		handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
			if r.URL.Path == path {
				return server
			}
			return nil
		}, nil)
		mux := http.NewServeMux()
		mux.Handle(path, handler)
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("serving MCP streamable endpoint", "url", "http://"+addr+path)
			errCh <- srv.ListenAndServe()
		}()
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	default:
		return fmt.Errorf("unknown transport %q", transport)
	}
}
