// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - The config command: show, get, set, path.
package cli

import (
	"fmt"
	"os"

	"github.com/jeranaias/driftline/internal/config"
)

// HandleConfig dispatches the config subcommands.
func HandleConfig(args Args) {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "show":
		configShow(args)
	case "get":
		configGet(args, parser.Positional(1))
	case "set":
		configSet(args, parser.Positional(1), parser.Positional(2))
	case "path":
		configPath()
	default:
		fatalf("unknown config command %q (try: show, get, set, path)", parser.Subcommand())
	}
}

func configShow(args Args) {
	cfg, err := LoadConfig(args)
	if err != nil {
		fatalf("%v", err)
	}
	for _, key := range config.Keys() {
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		if key == "auth.token" && value != "" {
			value = "(set)"
		}
		fmt.Printf("%s = %s\n", citeStyle.Render(key), value)
	}
}

func configGet(args Args, key string) {
	if key == "" {
		fatalf("usage: driftline config get <key>")
	}
	cfg, err := LoadConfig(args)
	if err != nil {
		fatalf("%v", err)
	}
	value, err := cfg.Get(key)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Println(value)
}

func configSet(args Args, key, value string) {
	if key == "" || value == "" {
		fatalf("usage: driftline config set <key> <value>")
	}
	cfg, err := LoadConfig(args)
	if err != nil {
		fatalf("%v", err)
	}
	if err := cfg.Set(key, value); err != nil {
		fatalf("%v", err)
	}
	if err := config.Save(cfg); err != nil {
		fatalf("save config: %v", err)
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("%s = %s", key, value)))
}

func configPath() {
	if path, err := config.ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			fmt.Println(path)
			return
		}
	}
	if path, err := config.ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			fmt.Println(path)
			return
		}
	}
	// No file yet; print where one would be written.
	path, err := config.ConfigPathTOML()
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Println(path + mutedStyle.Render(" (not created yet)"))
}
