// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question answering for scripts and quick queries.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/driftline/internal/api"
	"github.com/jeranaias/driftline/internal/model"
	"github.com/jeranaias/driftline/internal/stream"
)

// HandleAsk answers a single question and exits. On a TTY the full
// answer is rendered as markdown once the stream completes; when piped,
// content deltas go straight to stdout so the output stays plain and
// line-buffered.
func HandleAsk(args Args) {
	question := strings.TrimSpace(args.Query)
	if question == "" && !IsTTY() {
		// Question can come from a pipe: echo "..." | driftline ask
		data, err := io.ReadAll(os.Stdin)
		if err == nil {
			question = strings.TrimSpace(string(data))
		}
	}
	if question == "" {
		fatalf("no question given\n\nUsage: driftline ask \"your question\"")
	}

	cfg, err := LoadConfig(args)
	if err != nil {
		fatalf("%v", err)
	}
	client, err := BuildClient(cfg)
	if err != nil {
		fatalf("%v", err)
	}

	acc := stream.NewAccumulator()
	acc.Begin(model.NewID())

	interactive := IsStdoutTTY()
	showProgress := interactive && !args.Quiet
	var lastPhase model.Status

	callback := func(ev stream.Event) {
		acc.Apply(ev)
		switch ev := ev.(type) {
		case stream.StatusEvent:
			if showProgress && ev.Phase != lastPhase {
				fmt.Fprintln(os.Stderr, phaseStyle.Render("  "+ev.Phase.Label()))
				lastPhase = ev.Phase
			}
		case stream.ContentDeltaEvent:
			if !interactive {
				fmt.Print(ev.Text)
			}
		case stream.LegacyTextEvent:
			if !interactive {
				fmt.Print(ev.Text)
			}
		}
	}

	req := streamRequest(question, "", nil, args)
	err = client.StreamMessage(context.Background(), req, callback)
	if err == nil && !acc.Done() {
		acc.FinishInterrupted()
	}

	msg, ok := acc.Snapshot()
	if err != nil {
		if ok && msg.Content != "" && !interactive {
			fmt.Println()
		}
		fatalf("%v", err)
	}
	if msg.Status == model.StatusError {
		if msg.Content != "" {
			printAnswer(msg, interactive)
		}
		fatalf("%s", msg.ErrMessage)
	}

	if interactive {
		printAnswer(msg, true)
	} else {
		fmt.Println()
		printCitations(os.Stdout, msg.Citations, false)
	}
}

// streamRequest builds the chat request for a single turn.
func streamRequest(question, conversationID string, history []model.Message, args Args) api.ChatRequest {
	req := api.ChatRequest{
		Message:        question,
		ConversationID: conversationID,
		WebSearch:      !args.NoSearch,
	}
	for _, m := range history {
		if m.Content == "" || m.Status == model.StatusError {
			continue
		}
		req.History = append(req.History, api.HistoryMessage{
			Role:    m.Role.String(),
			Content: m.Content,
		})
	}
	return req
}

// printAnswer renders the completed answer. Markdown rendering is only
// attempted on a TTY; any renderer failure falls back to raw text.
func printAnswer(msg model.Message, markdown bool) {
	body := strings.TrimSpace(msg.Content)
	if body == "" {
		return
	}
	if markdown {
		if rendered, err := renderMarkdown(body); err == nil {
			fmt.Print(rendered)
		} else {
			fmt.Println(body)
		}
	} else {
		fmt.Println(body)
	}
	printCitations(os.Stdout, msg.Citations, markdown)
}

// renderMarkdown renders text with glamour at the terminal width.
func renderMarkdown(text string) (string, error) {
	width := GetTerminalWidth()
	if width > 100 {
		width = 100
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(text)
}

// printCitations prints source footnotes after an answer.
func printCitations(w io.Writer, citations []model.Citation, styled bool) {
	if len(citations) == 0 {
		return
	}
	fmt.Fprintln(w)
	if styled {
		fmt.Fprintln(w, mutedStyle.Render("Sources:"))
	} else {
		fmt.Fprintln(w, "Sources:")
	}
	for i, c := range citations {
		index := fmt.Sprintf("[%d]", i+1)
		if styled {
			index = citeStyle.Render(index)
		}
		title := c.Title
		if title == "" {
			title = c.Domain()
		}
		fmt.Fprintf(w, "  %s %s\n      %s\n", index, title, c.URL)
	}
}
