// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// htmlSanitizer is the sanitization policy for rendered article bodies and
// reader comments. UGCPolicy allows safe formatting tags while stripping
// scripts and event handlers.
var htmlSanitizer = bluemonday.UGCPolicy()

// markdown converts article bodies. GFM covers tables and strikethrough,
// which newsroom staff use freely.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// RenderMarkdown converts markdown to sanitized HTML safe for embedding in
// templates and API responses.
func RenderMarkdown(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return template.HTML(htmlSanitizer.SanitizeBytes(buf.Bytes())), nil //nolint:gosec // sanitized above
}

// SanitizeHTML strips dangerous markup from untrusted HTML, such as reader
// comment bodies submitted over the public API.
func SanitizeHTML(source string) string {
	return htmlSanitizer.Sanitize(source)
}
