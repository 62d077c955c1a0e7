package model

import (
	"errors"
	"net/url"
	"testing"
)

// TestParseMode tests parsing of persisted mode values.
func TestParseMode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"hide", ModeHide, false},
		{"keep", ModeKeep, false},
		{"gray", ModeGray, false},
		{" GRAY ", ModeGray, false},
		{"Hide", ModeHide, false},
		{"", "", true},
		{"grey", "", true},
		{"blur", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseMode(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidMode) {
					t.Errorf("expected ErrInvalidMode, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, expected %q", got, tc.want)
			}
		})
	}
}

// TestModeValid tests the Valid method of Mode.
func TestModeValid(t *testing.T) {
	t.Parallel()

	for _, m := range Modes() {
		if !m.Valid() {
			t.Errorf("expected %q to be valid", m)
		}
	}
	if Mode("strike").Valid() {
		t.Error("expected unknown mode to be invalid")
	}
	if DefaultMode != ModeHide {
		t.Errorf("expected default mode hide, got %q", DefaultMode)
	}
}

// TestCandidateURL tests construction of candidate URLs.
func TestCandidateURL(t *testing.T) {
	t.Parallel()

	u, err := url.Parse("https://Grokipedia.org:8443/wiki/x")
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	c := NewCandidateURL(u, DepthDecoded)
	if c.Host != "Grokipedia.org" {
		t.Errorf("expected host without port, got %q", c.Host)
	}
	if c.Raw != "https://Grokipedia.org:8443/wiki/x" {
		t.Errorf("unexpected raw value %q", c.Raw)
	}
	if !c.Decoded() {
		t.Error("expected depth 1 candidate to be decoded")
	}
	if NewCandidateURL(u, DepthDirect).Decoded() {
		t.Error("expected depth 0 candidate not to be decoded")
	}
}
