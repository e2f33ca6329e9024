// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatePersistsTokensAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := OpenState(path)
	require.NoError(t, err)
	_, ok := s.Tokens()
	assert.False(t, ok)

	pair := TokenPair{
		AccessToken:     "pra_abc",
		RefreshToken:    "prr_def",
		AccessExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
	require.NoError(t, s.SetTokens(pair))

	reopened, err := OpenState(path)
	require.NoError(t, err)
	got, ok := reopened.Tokens()
	require.True(t, ok)
	assert.Equal(t, pair.AccessToken, got.AccessToken)
	assert.Equal(t, pair.RefreshToken, got.RefreshToken)

	require.NoError(t, reopened.ClearTokens())
	final, err := OpenState(path)
	require.NoError(t, err)
	_, ok = final.Tokens()
	assert.False(t, ok)
}

func TestStateConsentGatesPreferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := OpenState(path)
	require.NoError(t, err)

	_, ok := s.Consent()
	assert.False(t, ok)

	// Without an answer, non-essential values are dropped.
	require.NoError(t, s.SetPreference("theme", "dark"))
	_, ok = s.Preference("theme")
	assert.False(t, ok)

	require.NoError(t, s.SetConsent(ConsentAccepted))
	require.NoError(t, s.SetPreference("theme", "dark"))
	v, ok := s.Preference("theme")
	require.True(t, ok)
	assert.Equal(t, "dark", v)

	// Declining wipes stored preferences.
	require.NoError(t, s.SetConsent(ConsentDeclined))
	_, ok = s.Preference("theme")
	assert.False(t, ok)

	record, ok := s.Consent()
	require.True(t, ok)
	assert.Equal(t, ConsentDeclined, record.Choice)
	assert.Equal(t, ConsentVersion, record.Version)
}

func TestStateRejectsUnknownConsentChoice(t *testing.T) {
	s, err := OpenState(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	assert.Error(t, s.SetConsent("maybe"))
}

func TestStateTokensSurviveConsentDecline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := OpenState(path)
	require.NoError(t, err)

	require.NoError(t, s.SetTokens(TokenPair{AccessToken: "pra_abc", RefreshToken: "prr_def"}))
	require.NoError(t, s.SetConsent(ConsentDeclined))

	got, ok := s.Tokens()
	require.True(t, ok)
	assert.Equal(t, "pra_abc", got.AccessToken)
}
