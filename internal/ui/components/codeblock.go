// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable rendering pieces for the
// driftline TUI: syntax-highlighted code blocks and citation footnotes.
package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/driftline/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock renders a fenced code block with syntax highlighting.
type CodeBlock struct {
	Language string
	Code     string
	MaxWidth int
}

// NewCodeBlock creates a code block renderer.
func NewCodeBlock(language, code string) CodeBlock {
	return CodeBlock{
		Language: language,
		Code:     code,
		MaxWidth: 80,
	}
}

// Render renders the code block with a language badge and border.
func (c CodeBlock) Render() string {
	code := strings.TrimRight(c.Code, "\n")
	highlighted := highlightCode(code, c.Language)

	var header string
	if c.Language != "" {
		header = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Bold(true).
			Render(c.Language) + "\n"
	}

	maxWidth := c.MaxWidth - 4
	if maxWidth < 20 {
		maxWidth = 20
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 1).
		MaxWidth(maxWidth).
		Render(header + highlighted)
}

// highlightCode applies chroma syntax highlighting. Returns the input
// unchanged when the language is unknown or highlighting fails.
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		return code
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	formatter := formatters.Get("terminal256")

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var sb strings.Builder
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(sb.String(), "\n")
}

// =============================================================================
// MARKDOWN CODE BLOCK PARSER
// =============================================================================

// RenderCodeBlocks replaces fenced code blocks in text with highlighted
// versions, leaving surrounding prose untouched. Used for in-flight
// streaming output where a full markdown render would be too slow per
// frame.
func RenderCodeBlocks(text string, maxWidth int) string {
	lines := strings.Split(text, "\n")
	var result []string
	var inBlock bool
	var codeLines []string
	var language string

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			if inBlock {
				block := NewCodeBlock(language, strings.Join(codeLines, "\n"))
				block.MaxWidth = maxWidth
				result = append(result, block.Render())
				inBlock = false
				codeLines = nil
			} else {
				inBlock = true
				language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
			}
			continue
		}
		if inBlock {
			codeLines = append(codeLines, line)
		} else {
			result = append(result, line)
		}
	}

	// Unclosed fence: the block is still streaming in. Render what we
	// have so the user sees code appear live.
	if inBlock {
		block := NewCodeBlock(language, strings.Join(codeLines, "\n"))
		block.MaxWidth = maxWidth
		result = append(result, block.Render())
	}

	return strings.Join(result, "\n")
}
