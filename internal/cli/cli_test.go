// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"testing"

	"github.com/jeranaias/driftline/internal/model"
)

// historyFixture builds a conversation transcript with one empty and
// one errored message mixed in.
func historyFixture() []model.Message {
	user := model.NewUserMessage("first question")
	done := model.NewAssistantMessage()
	done.AppendContent("first answer")
	done.SetStatus(model.StatusDone)
	empty := model.NewAssistantMessage()
	failed := model.NewAssistantMessage()
	failed.AppendContent("partial")
	failed.Fail("backend error")
	return []model.Message{*user, *done, *empty, *failed}
}

func TestArgParserFlagForms(t *testing.T) {
	p := NewArgParser([]string{"search", "--limit", "10", "--json=true", "-o", "out.txt", "--confirm"})

	if p.Subcommand() != "search" {
		t.Errorf("subcommand = %q, want %q", p.Subcommand(), "search")
	}
	if p.Flag("limit") != "10" {
		t.Errorf("limit = %q, want %q", p.Flag("limit"), "10")
	}
	if !p.BoolFlag("json") {
		t.Error("json should be true")
	}
	if p.Flag("o") != "out.txt" {
		t.Errorf("o = %q, want %q", p.Flag("o"), "out.txt")
	}
	if !p.BoolFlag("confirm") {
		t.Error("confirm should be true")
	}
}

func TestArgParserExplicitFalse(t *testing.T) {
	p := NewArgParser([]string{"--json=false"})
	if p.BoolFlag("json") {
		t.Error("json=false should parse as false")
	}
	if !p.HasFlag("json") {
		t.Error("json should still be present")
	}
}

func TestArgParserPositionals(t *testing.T) {
	p := NewArgParser([]string{"show", "conv_123", "extra"})

	if p.PositionalCount() != 3 {
		t.Fatalf("count = %d, want 3", p.PositionalCount())
	}
	if p.Positional(1) != "conv_123" {
		t.Errorf("positional(1) = %q", p.Positional(1))
	}
	if p.Positional(99) != "" {
		t.Error("out-of-range positional should be empty")
	}
	rest := p.PositionalFrom(1)
	if len(rest) != 2 || rest[0] != "conv_123" {
		t.Errorf("positionalFrom(1) = %v", rest)
	}
}

func TestArgParserFlagOrDefault(t *testing.T) {
	p := NewArgParser([]string{"--limit", "5"})
	if got := p.FlagOrDefault("limit", "20"); got != "5" {
		t.Errorf("got %q, want %q", got, "5")
	}
	if got := p.FlagOrDefault("offset", "0"); got != "0" {
		t.Errorf("got %q, want default %q", got, "0")
	}
}

func parseArgs(t *testing.T, argv ...string) (Command, Args) {
	t.Helper()
	saved := os.Args
	os.Args = append([]string{"driftline"}, argv...)
	defer func() { os.Args = saved }()
	return Parse()
}

func TestParseDefaultsToTUI(t *testing.T) {
	cmd, _ := parseArgs(t)
	if cmd != CmdTUI {
		t.Errorf("cmd = %v, want CmdTUI", cmd)
	}
}

func TestParseAskWithQuery(t *testing.T) {
	cmd, args := parseArgs(t, "ask", "what", "is", "rust")
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if args.Query != "what is rust" {
		t.Errorf("query = %q", args.Query)
	}
}

func TestParseGlobalFlags(t *testing.T) {
	cmd, args := parseArgs(t, "ask", "-q", "--no-search", "--server", "http://localhost:9999", "hello")
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if !args.Quiet {
		t.Error("quiet should be set")
	}
	if !args.NoSearch {
		t.Error("no-search should be set")
	}
	if args.ServerURL != "http://localhost:9999" {
		t.Errorf("server = %q", args.ServerURL)
	}
	if args.Query != "hello" {
		t.Errorf("query = %q, want %q", args.Query, "hello")
	}
}

func TestParseCommandAliases(t *testing.T) {
	cases := []struct {
		argv []string
		want Command
	}{
		{[]string{"version"}, CmdVersion},
		{[]string{"-v"}, CmdVersion},
		{[]string{"--version"}, CmdVersion},
		{[]string{"help"}, CmdHelp},
		{[]string{"-h"}, CmdHelp},
		{[]string{"signup"}, CmdRegister},
		{[]string{"s"}, CmdStatus},
		{[]string{"chat"}, CmdChat},
		{[]string{"history", "list"}, CmdHistory},
	}
	for _, tc := range cases {
		cmd, _ := parseArgs(t, tc.argv...)
		if cmd != tc.want {
			t.Errorf("%v: cmd = %v, want %v", tc.argv, cmd, tc.want)
		}
	}
}

func TestParseHistoryKeepsRawArgs(t *testing.T) {
	cmd, args := parseArgs(t, "history", "search", "rust", "--limit", "5")
	if cmd != CmdHistory {
		t.Fatalf("cmd = %v, want CmdHistory", cmd)
	}
	want := []string{"search", "rust", "--limit", "5"}
	if len(args.Raw) != len(want) {
		t.Fatalf("raw = %v, want %v", args.Raw, want)
	}
	for i := range want {
		if args.Raw[i] != want[i] {
			t.Errorf("raw[%d] = %q, want %q", i, args.Raw[i], want[i])
		}
	}
}

func TestStreamRequestFiltersHistory(t *testing.T) {
	history := historyFixture()
	req := streamRequest("next question", "conv_1", history, Args{NoSearch: true})

	if req.WebSearch {
		t.Error("web search should be disabled")
	}
	if req.ConversationID != "conv_1" {
		t.Errorf("conversation id = %q", req.ConversationID)
	}
	// The empty and errored messages are dropped.
	if len(req.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(req.History))
	}
	if req.History[0].Role != "user" || req.History[1].Role != "assistant" {
		t.Errorf("roles = %q, %q", req.History[0].Role, req.History[1].Role)
	}
}
