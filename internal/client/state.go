// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Consent choices for non-essential client storage.
const (
	ConsentAccepted = "accepted"
	ConsentDeclined = "declined"
)

// ConsentVersion is bumped whenever the storage policy changes; a stored
// record with an older version no longer counts as an answer.
const ConsentVersion = 1

// ConsentRecord is the caller's stored answer to the storage prompt.
type ConsentRecord struct {
	Version   int       `json:"version"`
	Choice    string    `json:"choice"`
	CreatedAt time.Time `json:"created_at"`
}

// stateFile is the on-disk layout.
type stateFile struct {
	Tokens      *TokenPair        `json:"tokens,omitempty"`
	Consent     *ConsentRecord    `json:"consent,omitempty"`
	Preferences map[string]string `json:"preferences,omitempty"`
}

// State is the single durable home for session identity and consent:
// the token pair, the consent record, and non-essential preferences.
// It persists to one JSON file and is safe for concurrent use.
type State struct {
	path string

	mu   sync.Mutex
	data stateFile
}

// OpenState loads client state from path, or starts empty when the file
// does not exist yet.
func OpenState(path string) (*State, error) {
	s := &State{path: path}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading client state: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parsing client state %s: %w", path, err)
	}
	return s, nil
}

// Tokens returns the stored token pair, if any.
func (s *State) Tokens() (TokenPair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Tokens == nil {
		return TokenPair{}, false
	}
	return *s.data.Tokens, true
}

// SetTokens stores and persists a token pair. Tokens are session identity
// and therefore essential storage, kept regardless of consent.
func (s *State) SetTokens(pair TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Tokens = &pair
	return s.save()
}

// ClearTokens drops the stored token pair.
func (s *State) ClearTokens() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Tokens == nil {
		return nil
	}
	s.data.Tokens = nil
	return s.save()
}

// Consent returns the stored consent record when it exists and matches
// the current version.
func (s *State) Consent() (ConsentRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Consent == nil || s.data.Consent.Version != ConsentVersion {
		return ConsentRecord{}, false
	}
	return *s.data.Consent, true
}

// SetConsent records the caller's choice. Declining drops any previously
// stored non-essential preferences.
func (s *State) SetConsent(choice string) error {
	if choice != ConsentAccepted && choice != ConsentDeclined {
		return fmt.Errorf("unknown consent choice %q", choice)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Consent = &ConsentRecord{
		Version:   ConsentVersion,
		Choice:    choice,
		CreatedAt: time.Now(),
	}
	if choice == ConsentDeclined {
		s.data.Preferences = nil
	}
	return s.save()
}

// SetPreference stores a non-essential key/value. Without accepted consent
// the value is silently dropped.
func (s *State) SetPreference(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Consent == nil || s.data.Consent.Version != ConsentVersion || s.data.Consent.Choice != ConsentAccepted {
		return nil
	}
	if s.data.Preferences == nil {
		s.data.Preferences = make(map[string]string)
	}
	s.data.Preferences[key] = value
	return s.save()
}

// Preference returns a stored non-essential value.
func (s *State) Preference(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data.Preferences[key]
	return v, ok
}

// save writes the state file atomically. Callers hold s.mu.
func (s *State) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding client state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("creating state temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing client state: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("setting state file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing state temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing client state: %w", err)
	}
	return nil
}
