// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Top-level parsing and dispatch for driftline.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.4.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdLogin
	CmdLogout
	CmdRegister
	CmdConfig
	CmdHistory
	CmdStatus
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet     bool
	Verbose   bool
	NoSearch  bool   // Disable web search for this query
	ServerURL string // Override server base URL

	// Command-specific
	Query string

	// Raw args remaining after the command word
	Raw []string
}

const usageText = `driftline - terminal client for the Driftline research assistant

Driftline streams answers from the Driftline backend into your
terminal, with live progress phases, inline citations, and local
conversation history.

Usage:
  driftline                    Start the TUI (default)
  driftline ask "question"     Ask a single question
  driftline chat               Interactive chat REPL
  driftline login              Sign in and store your token
  driftline logout             Sign out and clear the stored token
  driftline register           Create a new account
  driftline config [show|get|set|path]   Configuration
  driftline history [list|search|show|export|delete|clear]  Saved conversations
  driftline status             Show connection and account status
  driftline version            Show version information
  driftline help               Show this help

Ask flags:
  --no-search                  Answer without web search
  -q, --quiet                  Suppress progress output

History commands:
  driftline history list               List saved conversations
  driftline history search <query>     Search titles and content
  driftline history show <id>          Print a conversation
  driftline history export <id> [--out file.json]  Export as JSON
  driftline history delete <id>        Delete a conversation
  driftline history clear --confirm    Delete all conversations

Config commands:
  driftline config show                Print the active configuration
  driftline config get <key>           Print one value
  driftline config set <key> <value>   Update one value
  driftline config path                Print the config file location

Environment:
  DRIFTLINE_SERVER_URL         Override server.base_url
  DRIFTLINE_TOKEN              Override auth.token
  DRIFTLINE_THEME              Override ui.theme (dark|light|auto)
  DRIFTLINE_NO_HISTORY         Disable history when set
`

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	raw := os.Args[1:]

	var args Args
	if len(raw) == 0 {
		return CmdTUI, args
	}

	cmd := CmdTUI
	switch strings.ToLower(raw[0]) {
	case "ask":
		cmd = CmdAsk
		raw = raw[1:]
	case "chat":
		cmd = CmdChat
		raw = raw[1:]
	case "login":
		cmd = CmdLogin
		raw = raw[1:]
	case "logout":
		cmd = CmdLogout
		raw = raw[1:]
	case "register", "signup":
		cmd = CmdRegister
		raw = raw[1:]
	case "config":
		cmd = CmdConfig
		raw = raw[1:]
	case "history":
		cmd = CmdHistory
		raw = raw[1:]
	case "status", "s":
		cmd = CmdStatus
		raw = raw[1:]
	case "version", "-v", "--version":
		cmd = CmdVersion
		raw = raw[1:]
	case "help", "-h", "--help":
		cmd = CmdHelp
		raw = raw[1:]
	}

	// Pull global flags; everything else stays raw for the handler.
	var rest []string
	var query []string
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case "-q", "--quiet":
			args.Quiet = true
		case "--verbose":
			args.Verbose = true
		case "--no-search":
			args.NoSearch = true
		case "--server":
			if i+1 < len(raw) {
				args.ServerURL = raw[i+1]
				i++
			}
		default:
			rest = append(rest, raw[i])
			if !strings.HasPrefix(raw[i], "-") {
				query = append(query, raw[i])
			}
		}
	}
	args.Raw = rest
	args.Query = strings.Join(query, " ")

	return cmd, args
}

// HandleVersion prints version information.
func HandleVersion(args Args) {
	fmt.Printf("driftline %s\n", Version)
	if args.Verbose {
		fmt.Printf("  commit:  %s\n", GitCommit)
		fmt.Printf("  built:   %s\n", BuildDate)
		fmt.Printf("  runtime: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	}
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(usageText)
}
