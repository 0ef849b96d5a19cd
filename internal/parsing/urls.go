// Package parsing contains pure helpers for URLs, dates, and display values.
package parsing

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrEmptyURL marks a missing or blank source URL. Fatal, never retried.
var ErrEmptyURL = errors.New("missing URL")

// CanonicalURL normalizes a user-submitted video URL before any downstream
// call. Short-form share links become the canonical watch-page form so the
// probe and download invocations always see the same URL shape.
func CanonicalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return watchURL(id), nil
		}
	case "youtube.com", "m.youtube.com":
		if id, ok := strings.CutPrefix(strings.Trim(u.Path, "/"), "shorts/"); ok && id != "" {
			return watchURL(strings.Trim(id, "/")), nil
		}
	}

	return raw, nil
}

func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
