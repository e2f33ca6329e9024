// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides small general-purpose helpers, currently URL slug
// generation with Unicode normalization.
package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deaccent decomposes accented characters and strips the combining marks.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts a title to a URL-friendly slug: accents removed,
// lowercased, runs of anything non-alphanumeric collapsed to one hyphen.
func Slugify(s string) string {
	ascii, _, _ := transform.String(deaccent, s)
	ascii = strings.ToLower(ascii)

	var b strings.Builder
	b.Grow(len(ascii))
	pendingHyphen := false
	for _, r := range ascii {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// IsValidSlug reports whether s is already in canonical slug form.
func IsValidSlug(s string) bool {
	return s != "" && s == Slugify(s)
}
