// Package search scores posts against a free-text query.
//
// The score is a weighted term-frequency count: every occurrence of a
// distinct query token in the title counts TitleWeight, every occurrence in
// the body counts ContentWeight. No stemming, no fuzzy matching.
package search

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

const (
	TitleWeight   = 3
	ContentWeight = 1
)

// Document is the searchable view of a post.
type Document struct {
	ID        string
	Title     string
	Content   string // rich text (HTML) or plain text
	CreatedAt time.Time
}

// Result is a document that matched at least one query token.
type Result struct {
	Document
	Score int
}

// Tokenize lowercases s and splits it on anything that is not a letter or digit.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// PlainText returns the text nodes of a rich-text fragment joined by spaces,
// so that adjacent block elements do not merge their words. Plain text, or
// input that does not parse, is returned unchanged.
func PlainText(content string) string {
	if !looksLikeMarkup(content) {
		return content
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}
	var parts []string
	doc.Find("*").Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "#text" {
			parts = append(parts, s.Text())
		}
	})
	return strings.Join(parts, " ")
}

// looksLikeMarkup reports whether content carries a closed element or an
// entity. A bare "<" as in "a<b" would otherwise open a tag that swallows the
// rest of the text.
func looksLikeMarkup(content string) bool {
	if strings.Contains(content, "</") || strings.Contains(content, "/>") {
		return true
	}
	return !strings.Contains(content, "<") && strings.Contains(content, "&")
}

// queryTokens returns the distinct tokens of q in first-seen order.
func queryTokens(q string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range Tokenize(q) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func countTokens(text string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range Tokenize(text) {
		counts[tok]++
	}
	return counts
}

// Score returns the relevance of doc for the given distinct query tokens.
func Score(tokens []string, doc Document) int {
	if len(tokens) == 0 {
		return 0
	}
	title := countTokens(doc.Title)
	content := countTokens(PlainText(doc.Content))

	score := 0
	for _, tok := range tokens {
		score += TitleWeight*title[tok] + ContentWeight*content[tok]
	}
	return score
}

// Rank scores docs against query and returns the matches ordered by score
// desc, then CreatedAt desc, then ID asc. Documents scoring zero are dropped.
func Rank(query string, docs []Document) []Result {
	tokens := queryTokens(query)
	results := make([]Result, 0, len(docs))
	if len(tokens) == 0 {
		return results
	}

	for _, d := range docs {
		if s := Score(tokens, d); s > 0 {
			results = append(results, Result{Document: d, Score: s})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return results
}
