// Command flyerpdf-mcp is an MCP (Model Context Protocol) server that exposes
// flyer generation to AI assistants.
//
// # Installation
//
//	go install github.com/lvillar/flyerpdf/cmd/flyerpdf-mcp@latest
//
// # Configuration for Claude Desktop
//
// Add to ~/.config/claude/claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "flyerpdf": {
//	      "command": "flyerpdf-mcp",
//	      "args": ["-config", "/path/to/flyerpdf.yaml"]
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - generate_flyer: Build the paginated PDF flyer of a property
//   - classify_sections: Report which sections have content
//   - inspect_pdf: List pages, links and metadata of a PDF
//   - render_html: Fetch the browser flyer from the content service
//
// # Available Resources
//
//   - flyer://sections : Section keys and headings in layout order
//   - pdf://pages?path=... : Page sizes and link annotations
//   - pdf://metadata?path=... : Document metadata
//
// Logs go to stderr; stdout carries the protocol.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lvillar/flyerpdf"
	"github.com/lvillar/flyerpdf/config"
	"github.com/lvillar/flyerpdf/mcp"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Config file path")
	verbose := flag.Bool("v", false, "Verbose (development) logging")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flyerpdf-mcp: %v\n", err)
		os.Exit(1)
	}
	log, err := cfg.Logger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flyerpdf-mcp: logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	opts, err := cfg.Options()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	// Fail on bad options at startup rather than on the first call.
	if _, err := flyerpdf.New(opts...); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(log)

	mcp.RegisterDefaultTools(server, &mcp.Toolbox{
		Options: opts,
		Webhook: cfg.WebhookClient(log),
		Logger:  log,
	})
	mcp.RegisterDefaultResources(server)

	log.Info("serving", zap.String("server", mcp.ServerName))
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("server stopped", zap.Error(err))
		stop()
		log.Sync()
		os.Exit(1)
	}
}
