package query

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"
	"strings"

	"companysearch/internal/pkg/hash"
)

// DefaultLanguage is used when a query carries no language tag.
const DefaultLanguage = "fr"

// Facets are the parts of a search request that identify a cache entry.
type Facets struct {
	Text     string
	Hashtags []string
	Networks []string
	Language string
}

// Canonical is the normalized form of Facets, in fingerprint field order.
type Canonical struct {
	Query    string   `json:"query"`
	Hashtags []string `json:"hashtags"`
	Networks []string `json:"networks"`
	Lang     string   `json:"lang"`
}

// KeyBuilder derives cache fingerprints.
type KeyBuilder struct {
	normalizer Normalizer
}

// NewKeyBuilder creates a KeyBuilder using n for the text facet.
func NewKeyBuilder(n Normalizer) *KeyBuilder {
	if n == nil {
		n = RuleNormalizer{}
	}
	return &KeyBuilder{normalizer: n}
}

// Canonicalize normalizes every facet.
func (b *KeyBuilder) Canonicalize(ctx context.Context, f Facets) Canonical {
	lang := strings.ToLower(strings.TrimSpace(f.Language))
	if lang == "" {
		lang = DefaultLanguage
	}
	return Canonical{
		Query:    b.normalizer.Normalize(ctx, f.Text),
		Hashtags: CanonicalSet(f.Hashtags),
		Networks: CanonicalSet(f.Networks),
		Lang:     lang,
	}
}

// Fingerprint returns the 64 hex char SHA-256 of the canonical facets.
func (b *KeyBuilder) Fingerprint(ctx context.Context, f Facets) string {
	return b.Canonicalize(ctx, f).Fingerprint()
}

// Fingerprint digests an already canonical value.
func (c Canonical) Fingerprint() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Canonical only holds strings; Encode cannot fail.
	_ = enc.Encode(c)
	return hash.Fingerprint(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

// CanonicalSet lowercases, trims, dedupes and sorts values. Empty items are
// dropped and the result is never nil.
func CanonicalSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
