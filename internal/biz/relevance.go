package biz

import (
	"strings"

	"companysearch/internal/pkg/filter"
)

var (
	gabonMarkers = filter.NewMatcher(withUnaccented(
		"gabon", "gabonaise", "gabonais",
		"libreville", "port-gentil", "franceville",
		"oyem", "moanda", "lambaréné", "koulamoutou",
		"makokou", "bitam", "tchibanga", "mouila",
		"ndendé", "omboué", "akanda", "noya",
		"100% gabonais", "made in gabon",
		"entreprise gabonaise", "entrepreneur gabonais",
		"business gabon", "gabon business",
		".ga",
	)...)
	gabonNames   = filter.NewMatcher("gabon", "gabonaise", "gabonais")
	gabonCities  = filter.NewMatcher("libreville", "port-gentil", "franceville", "oyem", "moanda")
	gabonSlogans = filter.NewMatcher("100% gabonais", "made in gabon")
)

// withUnaccented appends the diacritic-free spelling of each word that has
// one, so "Lambarene" matches like "Lambaréné".
func withUnaccented(words ...string) []string {
	out := append([]string(nil), words...)
	for _, w := range words {
		if plain := filter.StripDiacritics(w); plain != w {
			out = append(out, plain)
		}
	}
	return out
}

// IsGabonRelated reports whether text mentions Gabon, a Gabonese city or a .ga domain.
func IsGabonRelated(text string) bool {
	return gabonMarkers.HasMatch(text)
}

// GabonScore rates how Gabonese a profile looks, from 0 to 100.
func GabonScore(text string, hashtags []string) int {
	score := 20*len(gabonNames.Matched(text)) + 15*len(gabonCities.Matched(text))
	for _, tag := range hashtags {
		tag = strings.ToLower(tag)
		if strings.Contains(tag, "gabon") || strings.Contains(tag, "libreville") {
			score += 10
		}
	}
	if gabonSlogans.HasMatch(text) {
		score += 30
	}
	return min(score, 100)
}

// scoreCompany fills GabonScore from the searchable text of c.
func scoreCompany(c *Company) {
	c.GabonScore = GabonScore(companyText(c), c.Hashtags)
}

func companyText(c *Company) string {
	return strings.Join([]string{c.Name, c.Bio, c.Location, c.ActivityDomain, c.ProfileURL}, " ")
}
