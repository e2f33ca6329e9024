// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash = %q, want argon2id prefix", hash)
	}

	ok, err := CheckPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if !ok {
		t.Error("CheckPassword = false for correct password")
	}

	ok, err = CheckPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if ok {
		t.Error("CheckPassword = true for wrong password")
	}
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	if _, err := CheckPassword("pw", "not-a-hash"); err == nil {
		t.Error("expected error for malformed hash")
	}
	if _, err := CheckPassword("pw", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA"); err == nil {
		t.Error("expected error for unsupported hash type")
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if NeedsRehash(hash) {
		t.Error("NeedsRehash = true for freshly created hash")
	}
	if !NeedsRehash("$argon2id$v=19$m=4096,t=3,p=2$c2FsdA$aGFzaA") {
		t.Error("NeedsRehash = false for outdated parameters")
	}
	if !NeedsRehash("garbage") {
		t.Error("NeedsRehash = false for malformed hash")
	}
}

func TestNewTokens(t *testing.T) {
	access := NewAccessToken()
	refresh := NewRefreshToken()

	if !strings.HasPrefix(access, AccessTokenPrefix) {
		t.Errorf("access token %q missing prefix %q", access, AccessTokenPrefix)
	}
	if !strings.HasPrefix(refresh, RefreshTokenPrefix) {
		t.Errorf("refresh token %q missing prefix %q", refresh, RefreshTokenPrefix)
	}
	if access == NewAccessToken() {
		t.Error("two access tokens are identical")
	}
	if len(access) != len(AccessTokenPrefix)+64 {
		t.Errorf("access token length = %d, want %d", len(access), len(AccessTokenPrefix)+64)
	}
}

func TestParseBearer(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer abc123", want: "abc123"},
		{name: "case insensitive scheme", header: "bearer abc123", want: "abc123"},
		{name: "missing header", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic abc123", wantErr: true},
		{name: "no token", header: "Bearer", wantErr: true},
		{name: "empty token", header: "Bearer ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBearer(tt.header)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseBearer(%q) expected error, got %q", tt.header, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBearer(%q): %v", tt.header, err)
			}
			if got != tt.want {
				t.Errorf("ParseBearer(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
