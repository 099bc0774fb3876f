package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"companysearch/internal/pkg/llm"
)

// DefaultSuggestions is how many suggestions Suggest returns when limit <= 0.
const DefaultSuggestions = 5

// Suggester proposes related searches for a partial query. It never fails.
type Suggester interface {
	Suggest(ctx context.Context, raw string, limit int) []string
}

var suggestionTemplates = []string{
	"%s à Libreville",
	"%s à Port-Gentil",
	"%s gabonais",
	"meilleur %s Gabon",
	"%s pas cher Libreville",
	"%s professionnel Gabon",
	"entreprise %s gabonaise",
	"service %s Libreville",
	"%s de qualité Gabon",
	"contact %s Libreville",
}

// domainSuggestions are checked in order; the first activity contained in
// the query wins.
var domainSuggestions = []struct {
	activity    string
	suggestions []string
}{
	{"restaurant", []string{
		"restaurants gabonais à Libreville",
		"meilleurs restaurants Port-Gentil",
		"restaurant traditionnel gabonais",
		"livraison restaurant Gabon",
		"restaurant africain Libreville",
	}},
	{"coiffure", []string{
		"salon de coiffure Libreville",
		"coiffeur professionnel Gabon",
		"coiffure afro Libreville",
		"barbier Libreville",
		"salon de beauté gabonais",
	}},
	{"transport", []string{
		"transport Libreville Port-Gentil",
		"taxi Libreville",
		"location voiture Gabon",
		"transport marchandise Gabon",
		"bus Libreville",
	}},
	{"informatique", []string{
		"réparation ordinateur Libreville",
		"développement web Gabon",
		"informatique professionnel Libreville",
		"maintenance IT Gabon",
		"formation informatique Libreville",
	}},
	{"immobilier", []string{
		"location appartement Libreville",
		"achat maison Gabon",
		"agence immobilière Libreville",
		"terrain à vendre Gabon",
		"villa Libreville",
	}},
}

// RuleSuggester answers from fixed activity lists, or from generic
// templates around the query.
type RuleSuggester struct{}

// Suggest implements Suggester.
func (RuleSuggester) Suggest(_ context.Context, raw string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestions
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return []string{}
	}

	folded := fold(text)
	for _, d := range domainSuggestions {
		if strings.Contains(folded, d.activity) {
			return capped(d.suggestions, limit)
		}
	}
	out := make([]string, 0, min(limit, len(suggestionTemplates)))
	for _, tpl := range suggestionTemplates[:min(limit, len(suggestionTemplates))] {
		out = append(out, fmt.Sprintf(tpl, text))
	}
	return out
}

func capped(s []string, limit int) []string {
	out := make([]string, min(limit, len(s)))
	copy(out, s)
	return out
}

const suggestionPrompt = `Génère %d suggestions de recherche en français pour trouver des entreprises gabonaises liées à "%s". Format: une suggestion par ligne, commençant par "-".

Exemples pour "restaurant":
- restaurants gabonais à Libreville
- meilleurs restaurants Port-Gentil
- restaurant traditionnel gabonais
- livraison restaurant Gabon
- restaurant africain Libreville

Pour "%s":`

// GenerativeSuggester asks a text generator for suggestions.
type GenerativeSuggester struct {
	gen      llm.Generator
	fallback Suggester
	timeout  time.Duration
	log      *log.Helper
}

// NewGenerativeSuggester returns a suggester backed by gen. WithMemo is ignored.
func NewGenerativeSuggester(gen llm.Generator, opts ...GenerativeOption) *GenerativeSuggester {
	o := buildOptions(opts)
	return &GenerativeSuggester{
		gen:      gen,
		fallback: RuleSuggester{},
		timeout:  o.timeout,
		log:      log.NewHelper(log.With(o.logger, "module", "query/suggest")),
	}
}

// Suggest implements Suggester.
func (s *GenerativeSuggester) Suggest(ctx context.Context, raw string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestions
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return []string{}
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.gen.Generate(cctx, fmt.Sprintf(suggestionPrompt, limit, text, text))
	if err != nil {
		s.log.WithContext(ctx).Warnf("ai suggestions failed, using templates: %v", err)
		return s.fallback.Suggest(ctx, text, limit)
	}
	suggestions := parseSuggestions(out, limit)
	if len(suggestions) == 0 {
		s.log.WithContext(ctx).Warn("ai suggestions returned nothing, using templates")
		return s.fallback.Suggest(ctx, text, limit)
	}
	return suggestions
}

var suggestionBullet = regexp.MustCompile(`^(?:[-•]|\d+\.)\s*`)

// parseSuggestions keeps bulleted or numbered lines of 4 to 99 characters.
func parseSuggestions(out string, limit int) []string {
	var suggestions []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !suggestionBullet.MatchString(line) {
			continue
		}
		line = strings.TrimSpace(suggestionBullet.ReplaceAllString(line, ""))
		if n := runeLen(line); n <= 3 || n >= 100 {
			continue
		}
		key := fold(line)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		suggestions = append(suggestions, line)
		if len(suggestions) == limit {
			break
		}
	}
	return suggestions
}

// NewSuggester picks the generative strategy when gen is set.
func NewSuggester(gen llm.Generator, opts ...GenerativeOption) Suggester {
	if gen == nil {
		return RuleSuggester{}
	}
	return NewGenerativeSuggester(gen, opts...)
}
