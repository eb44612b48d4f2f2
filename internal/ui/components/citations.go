// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/jeranaias/driftline/internal/model"
	"github.com/jeranaias/driftline/internal/ui/styles"
	"github.com/jeranaias/driftline/internal/util"
)

// =============================================================================
// CITATION FOOTNOTES
// =============================================================================

// RenderCitations renders web-search sources as a footnote list under an
// answer, in arrival order:
//
//	[1] The Answer Page example.com
//	[2] Another Source docs.example.org
//
// Returns "" when there are no citations.
func RenderCitations(theme *styles.Theme, citations []model.Citation, maxWidth int) string {
	if len(citations) == 0 {
		return ""
	}

	var lines []string
	for _, c := range citations {
		index := theme.CitationIndex.Render("[" + strconv.Itoa(c.ID) + "]")

		title := c.Title
		if title == "" {
			title = c.URL
		}
		// Truncate before styling; ANSI sequences would skew the width
		// measurement afterwards.
		domain := c.Domain()
		titleBudget := maxWidth - util.StringWidth(domain) - len("[00] ") - 3
		if titleBudget > 0 {
			title = util.TruncateWidth(title, titleBudget)
		}

		entry := index + " " + theme.CitationTitle.Render(title) + " " +
			theme.CitationDomain.Render(domain)
		lines = append(lines, entry)
	}
	return strings.Join(lines, "\n")
}
