// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - The history command: list, search, show, delete, clear.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/driftline/internal/model"
	"github.com/jeranaias/driftline/internal/storage"
)

// HandleHistory dispatches the history subcommands.
func HandleHistory(args Args) {
	cfg, err := LoadConfig(args)
	if err != nil {
		fatalf("%v", err)
	}
	if !cfg.History.Enabled {
		fatalf("history is disabled (driftline config set history.enabled true)")
	}
	store, err := OpenHistory(cfg)
	if err != nil {
		fatalf("open history: %v", err)
	}
	defer store.Close()

	parser := NewArgParser(args.Raw)
	switch parser.Subcommand() {
	case "", "list":
		historyList(store)
	case "search":
		historySearch(store, strings.Join(parser.PositionalFrom(1), " "))
	case "show":
		historyShow(store, parser.Positional(1))
	case "export":
		historyExport(store, parser.Positional(1), parser.Flag("out"))
	case "delete", "rm":
		historyDelete(store, parser.Positional(1))
	case "clear":
		historyClear(store, parser.BoolFlag("confirm"))
	default:
		fatalf("unknown history command %q (try: list, search, show, export, delete, clear)", parser.Subcommand())
	}
}

func historyList(store *storage.Store) {
	metas, err := store.List()
	if err != nil {
		fatalf("list conversations: %v", err)
	}
	printMetas(metas, "no saved conversations")
}

func historySearch(store *storage.Store, query string) {
	if query == "" {
		fatalf("usage: driftline history search <query>")
	}
	metas, err := store.Search(query)
	if err != nil {
		fatalf("search conversations: %v", err)
	}
	printMetas(metas, "no matches")
}

func printMetas(metas []storage.Meta, emptyMsg string) {
	if len(metas) == 0 {
		fmt.Println(mutedStyle.Render(emptyMsg))
		return
	}
	for _, m := range metas {
		title := m.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s  %s\n      %s\n",
			citeStyle.Render(m.ID),
			title,
			mutedStyle.Render(fmt.Sprintf("%d messages, updated %s",
				m.MessageCount, m.UpdatedAt.Format("2006-01-02 15:04"))))
	}
}

func historyShow(store *storage.Store, id string) {
	if id == "" {
		fatalf("usage: driftline history show <id>")
	}
	conv, err := store.Load(id)
	if errors.Is(err, storage.ErrNotFound) {
		fatalf("conversation %s not found", id)
	}
	if err != nil {
		fatalf("load conversation: %v", err)
	}

	fmt.Println(welcomeStyle.Render(conv.Title))
	fmt.Println(mutedStyle.Render(conv.CreatedAt.Format("2006-01-02 15:04")))
	fmt.Println()
	for _, msg := range conv.Messages {
		fmt.Println(citeStyle.Render(msg.Role.DisplayName()))
		if msg.Status == model.StatusError {
			fmt.Println(errorStyle.Render("[Error] " + msg.ErrMessage))
		}
		if msg.Content != "" {
			fmt.Println(msg.Content)
		}
		printCitations(os.Stdout, msg.Citations, false)
		fmt.Println()
	}
}

func historyExport(store *storage.Store, id, out string) {
	if id == "" {
		fatalf("usage: driftline history export <id> [--out file.json]")
	}
	if out == "" {
		out = id + ".json"
	}
	err := store.Export(id, out)
	if errors.Is(err, storage.ErrNotFound) {
		fatalf("conversation %s not found", id)
	}
	if err != nil {
		fatalf("export conversation: %v", err)
	}
	fmt.Println(okStyle.Render("exported to " + out))
}

func historyDelete(store *storage.Store, id string) {
	if id == "" {
		fatalf("usage: driftline history delete <id>")
	}
	err := store.Delete(id)
	if errors.Is(err, storage.ErrNotFound) {
		fatalf("conversation %s not found", id)
	}
	if err != nil {
		fatalf("delete conversation: %v", err)
	}
	fmt.Println(okStyle.Render("deleted " + id))
}

func historyClear(store *storage.Store, confirmed bool) {
	if !confirmed {
		fatalf("this deletes all saved conversations; re-run with --confirm")
	}
	if err := store.Clear(); err != nil {
		fatalf("clear history: %v", err)
	}
	fmt.Println(okStyle.Render("history cleared"))
}
