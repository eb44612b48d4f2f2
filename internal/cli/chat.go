// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL for terminals where the full TUI is
// unwanted (ssh sessions, minimal terminals, muscle memory).
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/driftline/internal/api"
	"github.com/jeranaias/driftline/internal/config"
	"github.com/jeranaias/driftline/internal/model"
	"github.com/jeranaias/driftline/internal/storage"
	"github.com/jeranaias/driftline/internal/stream"
)

// =============================================================================
// LINE EDITOR
// =============================================================================

// ChatCLI wraps liner with persistent input history.
type ChatCLI struct {
	line        *liner.State
	historyPath string
}

// NewChatCLI creates the line editor and loads prior input history.
func NewChatCLI() (*ChatCLI, error) {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	c := &ChatCLI{line: line}
	if dir, err := config.ConfigDir(); err == nil {
		c.historyPath = filepath.Join(dir, "chat_history")
		if f, err := os.Open(c.historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	return c, nil
}

// ReadInput reads one line with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	return c.line.Prompt(prompt)
}

// AppendHistory records an input line in the editor history.
func (c *ChatCLI) AppendHistory(input string) {
	c.line.AppendHistory(input)
}

// Close saves input history and restores the terminal.
func (c *ChatCLI) Close() {
	if c.historyPath != "" {
		if f, err := os.OpenFile(c.historyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			c.line.WriteHistory(f)
			f.Close()
		}
	}
	c.line.Close()
}

// =============================================================================
// CHAT REPL
// =============================================================================

// HandleChat runs the interactive chat loop.
func HandleChat(args Args) {
	if !IsTTY() {
		fatalf("chat mode requires an interactive terminal (try: driftline ask)")
	}

	cfg, err := LoadConfig(args)
	if err != nil {
		fatalf("%v", err)
	}
	client, err := BuildClient(cfg)
	if err != nil {
		fatalf("%v", err)
	}
	store, err := OpenHistory(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, warningStyle.Render("history unavailable: "+err.Error()))
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	repl, err := NewChatCLI()
	if err != nil {
		fatalf("%v", err)
	}
	defer repl.Close()

	conv := model.NewConversation()
	printWelcome(cfg)

	for {
		input, err := repl.ReadInput(promptStyle.Render("you> "))
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Println()
			printExitSummary(conv)
			return
		}
		if err != nil {
			fatalf("read input: %v", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		repl.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := handleSlashCommand(input, conv); quit {
				printExitSummary(conv)
				return
			}
			continue
		}

		runChatTurn(client, store, conv, input, args)
	}
}

// runChatTurn streams one assistant response into the conversation.
func runChatTurn(client *api.Client, store *storage.Store, conv *model.Conversation, input string, args Args) {
	history := historySnapshot(conv)
	conv.AddUserMessage(input)
	assistant := conv.AddAssistantMessage()

	acc := stream.NewAccumulator()
	acc.Begin(assistant.ID)

	var lastPhase model.Status
	callback := func(ev stream.Event) {
		acc.Apply(ev)
		switch ev := ev.(type) {
		case stream.StatusEvent:
			if !args.Quiet && ev.Phase != lastPhase && ev.Phase != model.StatusDone {
				fmt.Fprintln(os.Stderr, phaseStyle.Render("  "+ev.Phase.Label()))
				lastPhase = ev.Phase
			}
		case stream.ContentDeltaEvent:
			fmt.Print(ev.Text)
		case stream.LegacyTextEvent:
			fmt.Print(ev.Text)
		}
	}

	req := streamRequest(input, conv.ID, history, args)
	err := client.StreamMessage(context.Background(), req, callback)
	if err == nil && !acc.Done() {
		acc.FinishInterrupted()
	}
	fmt.Println()

	if snap, ok := acc.Snapshot(); ok {
		assistant.Content = snap.Content
		assistant.Citations = snap.Citations
		assistant.Status = snap.Status
		assistant.IsLoading = snap.IsLoading
		assistant.ErrMessage = snap.ErrMessage
	}
	if err != nil && !assistant.Status.Terminal() {
		assistant.Fail(err.Error())
	}

	if assistant.Status == model.StatusError {
		fmt.Println(errorStyle.Render("[Error] " + assistant.ErrMessage))
		conv.RemoveIfEmptyError(assistant.ID)
	} else {
		printCitations(os.Stdout, assistant.Citations, true)
	}
	fmt.Println()

	if store != nil && !conv.IsEmpty() {
		if err := store.Save(conv); err != nil {
			fmt.Fprintln(os.Stderr, warningStyle.Render("save failed: "+err.Error()))
		}
	}
}

// historySnapshot copies completed messages for request context.
func historySnapshot(conv *model.Conversation) []model.Message {
	var out []model.Message
	for _, m := range conv.Messages {
		if m.Content == "" || (m.Role == model.RoleAssistant && m.Status != model.StatusDone) {
			continue
		}
		out = append(out, *m)
	}
	return out
}

// handleSlashCommand runs a REPL command. Returns true to quit.
func handleSlashCommand(input string, conv *model.Conversation) bool {
	switch strings.Fields(input)[0] {
	case "/quit", "/exit", "/q":
		return true
	case "/new", "/clear":
		conv.ClearHistory()
		fmt.Println(infoStyle.Render("started a fresh conversation"))
	case "/citations":
		printLastCitations(conv)
	case "/history":
		printTurnHistory(conv)
	case "/help":
		printChatHelp()
	default:
		fmt.Println(mutedStyle.Render("unknown command (try /help)"))
	}
	return false
}

func printWelcome(cfg *config.Config) {
	fmt.Println(welcomeStyle.Render("driftline chat"))
	fmt.Println(mutedStyle.Render("connected to " + cfg.Server.BaseURL))
	fmt.Println(mutedStyle.Render("type /help for commands, /quit to exit"))
	fmt.Println()
}

func printChatHelp() {
	fmt.Println(infoStyle.Render("commands:"))
	fmt.Println("  /new        start a fresh conversation")
	fmt.Println("  /citations  show sources for the last answer")
	fmt.Println("  /history    show this session's turns")
	fmt.Println("  /quit       exit chat")
}

// printLastCitations shows the sources behind the most recent answer.
func printLastCitations(conv *model.Conversation) {
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		m := conv.Messages[i]
		if m.Role != model.RoleAssistant || m.Status != model.StatusDone {
			continue
		}
		if len(m.Citations) == 0 {
			fmt.Println(mutedStyle.Render("the last answer cited no sources"))
			return
		}
		printCitations(os.Stdout, m.Citations, true)
		return
	}
	fmt.Println(mutedStyle.Render("no answers yet"))
}

func printTurnHistory(conv *model.Conversation) {
	if conv.IsEmpty() {
		fmt.Println(mutedStyle.Render("no messages yet"))
		return
	}
	for _, m := range conv.Messages {
		label := m.Role.DisplayName()
		fmt.Printf("%s %s\n", citeStyle.Render(label+":"), m.Preview(70))
	}
}

func printExitSummary(conv *model.Conversation) {
	n := conv.MessageCount()
	if n == 0 {
		fmt.Println(mutedStyle.Render("goodbye"))
		return
	}
	fmt.Println(mutedStyle.Render(fmt.Sprintf("goodbye (%d messages this session)", n)))
}
