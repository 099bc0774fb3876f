package filter

import (
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Match is one keyword occurrence found by the automaton.
type Match struct {
	Keyword  string
	Position int // rune offset in the normalized text
}

type node struct {
	children map[rune]*node
	failLink *node
	output   []string
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// AhoCorasick matches a set of keywords against text in a single pass.
// Matching is case-insensitive; see NormalizeText.
type AhoCorasick struct {
	root *node
	size int
	mu   sync.RWMutex
}

// NewAhoCorasick creates an empty automaton. It matches nothing until Build is called.
func NewAhoCorasick() *AhoCorasick {
	return &AhoCorasick{root: newNode()}
}

// NewMatcher builds an automaton for keywords.
func NewMatcher(keywords ...string) *AhoCorasick {
	ac := NewAhoCorasick()
	ac.Build(keywords)
	return ac
}

// Build replaces the keyword set. Empty keywords are ignored.
func (ac *AhoCorasick) Build(keywords []string) {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	ac.root = newNode()
	ac.size = 0
	for _, kw := range keywords {
		if ac.addKeyword(kw) {
			ac.size++
		}
	}
	ac.buildFailLinks()
}

// Len returns the number of keywords in the automaton.
func (ac *AhoCorasick) Len() int {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	return ac.size
}

func (ac *AhoCorasick) addKeyword(keyword string) bool {
	normalized := NormalizeText(keyword)
	if normalized == "" {
		return false
	}
	n := ac.root
	for _, char := range normalized {
		child, ok := n.children[char]
		if !ok {
			child = newNode()
			n.children[char] = child
		}
		n = child
	}
	for _, existing := range n.output {
		if existing == normalized {
			return false
		}
	}
	n.output = append(n.output, normalized)
	return true
}

// buildFailLinks computes fail links breadth first.
func (ac *AhoCorasick) buildFailLinks() {
	queue := make([]*node, 0, len(ac.root.children))
	for _, child := range ac.root.children {
		child.failLink = ac.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for char, child := range current.children {
			queue = append(queue, child)

			failNode := current.failLink
			for failNode != nil && failNode.children[char] == nil {
				failNode = failNode.failLink
			}
			if failNode == nil {
				child.failLink = ac.root
			} else {
				child.failLink = failNode.children[char]
				child.output = append(child.output, child.failLink.output...)
			}
		}
	}
}

func (ac *AhoCorasick) step(n *node, char rune) *node {
	for n != nil && n.children[char] == nil {
		n = n.failLink
	}
	if n == nil {
		return ac.root
	}
	return n.children[char]
}

// Search returns every keyword occurrence in text.
func (ac *AhoCorasick) Search(text string) []Match {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	matches := make([]Match, 0)
	n := ac.root
	position := 0
	for _, char := range NormalizeText(text) {
		n = ac.step(n, char)
		for _, kw := range n.output {
			matches = append(matches, Match{
				Keyword:  kw,
				Position: position - len([]rune(kw)) + 1,
			})
		}
		position++
	}
	return matches
}

// HasMatch reports whether any keyword occurs in text.
func (ac *AhoCorasick) HasMatch(text string) bool {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	n := ac.root
	for _, char := range NormalizeText(text) {
		n = ac.step(n, char)
		if len(n.output) > 0 {
			return true
		}
	}
	return false
}

// Matched returns the distinct keywords found in text, in order of first occurrence.
func (ac *AhoCorasick) Matched(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range ac.Search(text) {
		if _, ok := seen[m.Keyword]; ok {
			continue
		}
		seen[m.Keyword] = struct{}{}
		out = append(out, m.Keyword)
	}
	return out
}

// NormalizeText folds text for matching: Unicode NFC, then lowercase.
// Diacritics are kept so matching agrees with SQL ILIKE.
func NormalizeText(text string) string {
	composed := norm.NFC.String(text)
	lowered := make([]rune, 0, len(composed))
	for _, r := range composed {
		lowered = append(lowered, unicode.ToLower(r))
	}
	return string(lowered)
}

// StripDiacritics removes combining marks, e.g. "Lambaréné" becomes "Lambarene".
func StripDiacritics(text string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	result, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return result
}
