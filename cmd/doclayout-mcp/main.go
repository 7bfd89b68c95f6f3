// Command doclayout-mcp is an MCP (Model Context Protocol) server that
// exposes the quotation template editor and PDF exporter to AI assistants.
//
// # Installation
//
//	go install github.com/lvillar/doclayout/cmd/doclayout-mcp@latest
//
// # Configuration for Claude Desktop
//
// Add to ~/.config/claude/claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "doclayout": {
//	      "command": "doclayout-mcp",
//	      "args": ["-config", "/path/to/doclayout.yaml"]
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - list_templates, get_template: Inspect stored templates
//   - create_template, duplicate_template, rename_template, delete_template: Manage templates
//   - save_template, activate_template: Store a template, choose the active one
//   - add_element, remove_element: Edit the element list
//   - move_element, resize_element: Change geometry under the placement rules
//   - auto_arrange, check_overlaps: Repair and inspect layouts
//   - preview_text: Fill placeholder tokens
//   - export_pdf: Render a template as PDF
//
// # Available Resources
//
//   - template://list : Template names and the active template
//   - template://active : The active template
//   - template://get?name=... : A single template
//   - template://tokens : Placeholder tokens
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lvillar/doclayout/cli"
	"github.com/lvillar/doclayout/config"
	"github.com/lvillar/doclayout/mcp"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "doclayout-mcp: %v\n", err)
		os.Exit(1)
	}
	// stdout carries the protocol; logs go to stderr.
	log := cfg.Log.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := cli.NewEnv(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "doclayout-mcp: %v\n", err)
		os.Exit(1)
	}

	server := mcp.NewServer()
	server.SetLogger(log)

	mcp.RegisterDefaultTools(server, env.Backend())
	mcp.RegisterDefaultResources(server, env.Store)

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "doclayout-mcp: %v\n", err)
		os.Exit(1)
	}
}
