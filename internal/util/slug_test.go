// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"Café au Lait", "cafe-au-lait"},
		{"  Leading & trailing!  ", "leading-trailing"},
		{"Multiple---hyphens", "multiple-hyphens"},
		{"Ünïcödé Tëst", "unicode-test"},
		{"already-a-slug", "already-a-slug"},
		{"123 Numbers 456", "123-numbers-456"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsValidSlug(t *testing.T) {
	valid := []string{"a", "hello-world", "a1-b2"}
	invalid := []string{"", "Hello", "-leading", "trailing-", "double--hyphen", "with space"}

	for _, s := range valid {
		if !IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = true, want false", s)
		}
	}
}
