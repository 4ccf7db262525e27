// Package sanitize strips markup from user supplied text.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy

	richOnce   sync.Once
	richPolicy *bluemonday.Policy
)

func strict() *bluemonday.Policy {
	strictOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

func rich() *bluemonday.Policy {
	richOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		richPolicy = policy
	})
	return richPolicy
}

// Text removes every tag and returns plain text. Entities escaped by the
// policy are decoded again since the result is stored as text, not HTML.
func Text(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict().Sanitize(trimmed)))
}

// Rich keeps safe formatting markup (paragraphs, lists, links) for library content.
func Rich(raw string) string {
	return strings.TrimSpace(rich().Sanitize(raw))
}
