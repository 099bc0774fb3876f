// Package provider contains HTTP clients for the external company sources.
package provider

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 15 * time.Second

// ErrNotConfigured is returned when a client has no credentials.
var ErrNotConfigured = errors.New("provider: missing API credentials")

// APIError is a non-success answer from a provider.
type APIError struct {
	Provider string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Status, e.Message)
}

var hashtagRe = regexp.MustCompile(`#[\p{L}\p{N}_]+`)

// ExtractHashtags returns the #tags found in text, in order of appearance.
func ExtractHashtags(text string) []string {
	return hashtagRe.FindAllString(text, -1)
}
