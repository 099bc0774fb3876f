package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"companysearch/internal/pkg/llm"
)

// KeywordExtractor returns the activity and place tokens of a query. It
// never fails; an empty slice means nothing to search.
type KeywordExtractor interface {
	Extract(ctx context.Context, raw string) []string
}

var keywordStopWords = newWordSet(
	"le", "la", "les", "un", "une", "des", "du", "de", "à", "au", "aux",
	"en", "pour", "dans", "sur", "avec", "sans", "par", "chez", "près",
	"cherche", "trouve", "trouver", "recherche",
)

// minKeywordRunes is the shortest accepted keyword, exclusive.
const minKeywordRunes = 2

// RuleExtractor splits on whitespace and drops stop-words and short tokens.
type RuleExtractor struct{}

// Extract implements KeywordExtractor.
func (RuleExtractor) Extract(_ context.Context, raw string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, tok := range strings.Fields(fold(raw)) {
		tok = trimPunct(tok)
		if runeLen(tok) <= minKeywordRunes || keywordStopWords.has(tok) {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

const keywordPrompt = `Extrais les mots-clés principaux de cette recherche (type d'activité et localisation uniquement).
Exemples:
- "restaurant à lalala" → ["restaurant", "lalala"]
- "cherche coiffeur libreville" → ["coiffeur", "libreville"]
- "salon de beauté owendo" → ["beauté", "owendo"]

Recherche: "%s"
Mots-clés (séparés par des virgules):`

// GenerativeExtractor asks a text generator for keywords.
type GenerativeExtractor struct {
	gen      llm.Generator
	fallback KeywordExtractor
	timeout  time.Duration
	log      *log.Helper
}

// NewGenerativeExtractor returns an extractor backed by gen. WithMemo is ignored.
func NewGenerativeExtractor(gen llm.Generator, opts ...GenerativeOption) *GenerativeExtractor {
	o := buildOptions(opts)
	return &GenerativeExtractor{
		gen:      gen,
		fallback: RuleExtractor{},
		timeout:  o.timeout,
		log:      log.NewHelper(log.With(o.logger, "module", "query/keywords")),
	}
}

// Extract implements KeywordExtractor.
func (e *GenerativeExtractor) Extract(ctx context.Context, raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	cctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	out, err := e.gen.Generate(cctx, fmt.Sprintf(keywordPrompt, raw))
	if err != nil {
		e.log.WithContext(ctx).Warnf("ai keyword extraction failed, using rules: %v", err)
		return e.fallback.Extract(ctx, raw)
	}

	keywords := parseKeywords(out)
	if len(keywords) == 0 {
		e.log.WithContext(ctx).Warn("ai keyword extraction returned nothing, using rules")
		return e.fallback.Extract(ctx, raw)
	}
	e.log.WithContext(ctx).Debugf("keywords for %q: %s", raw, strings.Join(keywords, ", "))
	return keywords
}

var keywordCleaner = strings.NewReplacer(`"`, "", "'", "", "[", "", "]", "", "`", "")

func parseKeywords(out string) []string {
	parts := strings.FieldsFunc(out, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	var keywords []string
	seen := make(map[string]struct{})
	for _, p := range parts {
		k := fold(strings.TrimSpace(keywordCleaner.Replace(p)))
		k = strings.TrimSpace(strings.TrimPrefix(k, "-"))
		if runeLen(k) <= minKeywordRunes {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keywords = append(keywords, k)
	}
	return keywords
}

// NewKeywordExtractor picks the generative strategy when gen is set.
func NewKeywordExtractor(gen llm.Generator, opts ...GenerativeOption) KeywordExtractor {
	if gen == nil {
		return RuleExtractor{}
	}
	return NewGenerativeExtractor(gen, opts...)
}
