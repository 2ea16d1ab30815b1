// Command mcp-reminder provides an MCP server for reminder management.
//
// It shares the reminder database and config with the reminder command, so
// reminders added here are fired by the background scheduler.
//
// Usage:
//
//	./mcp-reminder                  # Start MCP server (stdio)
//	./mcp-reminder --config <path>  # Use another config file
//	./mcp-reminder --help           # Show help
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/letiantian/reminder/internal/config"
	"github.com/letiantian/reminder/internal/logger"
	"github.com/letiantian/reminder/internal/reminder"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "path to the config file")
	flag.Usage = printHelp
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol; logs go to stderr
	log := logger.New(os.Stderr, cfg.Log.Level, false)

	store, err := reminder.NewStore(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	svc := reminder.NewService(store, cfg.Notifier.DefaultRepeat, cfg.Grace(), reminder.WithLogger(log))
	s := reminder.NewServer(svc)

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Fprintln(os.Stderr, `MCP Reminder Server - Reminder management via MCP protocol

USAGE:
    mcp-reminder                  Start MCP server (communicates via stdio)
    mcp-reminder --config <path>  Config file (default: ~/.reminder/config.yaml)
    mcp-reminder --help           Show this help

ENVIRONMENT:
    REMINDER_DIR and the other REMINDER_* variables override the config file.

TOOLS:
    add_reminder      Schedule a reminder (message, when, after, repeat)
    list_reminders    List pending reminders, earliest first
    list_history      List fired reminders
    delete_reminder   Delete a pending reminder by id
    clean_reminders   Purge stale pending reminders and clear history

CONFIGURATION:
    Register with an MCP client, e.g.:
    {
      "mcpServers": {
        "reminder": {
          "command": "/path/to/mcp-reminder",
          "args": []
        }
      }
    }`)
}
