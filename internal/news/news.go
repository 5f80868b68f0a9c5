// Package news fetches recent articles about a company from NewsAPI, Polygon
// and the Google News RSS feed.
package news

import (
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"stock-analysis-agent/internal/types"
)

var ErrNoArticles = errors.New("no articles")

// truncatedSuffix matches the "[+1234 chars]" marker NewsAPI appends to content.
var truncatedSuffix = regexp.MustCompile(`\s*\[\+\d+ chars\]\s*$`)

// StripHTML returns the visible text of an HTML fragment with whitespace collapsed.
// Plain text passes through unchanged apart from whitespace.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapse(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapse(s)
	}
	return collapse(doc.Text())
}

// TrimContent strips markup and the NewsAPI truncation marker.
func TrimContent(s string) string {
	return StripHTML(truncatedSuffix.ReplaceAllString(s, ""))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Query builds the NewsAPI search expression for a company.
func Query(q types.NewsQuery) string {
	name := q.CompanyName
	if name == "" {
		name = q.Ticker
	}
	return `("` + name + `" OR "` + q.Ticker + `") AND (stock OR shares OR earnings OR "price target" OR analyst OR market OR investors)`
}

// clean normalizes article text and drops entries with nothing to read.
func clean(articles []types.NewsArticle) []types.NewsArticle {
	out := make([]types.NewsArticle, 0, len(articles))
	for _, a := range articles {
		a.Title = StripHTML(a.Title)
		a.Description = StripHTML(a.Description)
		a.Content = TrimContent(a.Content)
		if a.Title == "" && a.Description == "" && a.Content == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}

func limit(q types.NewsQuery, fallback int) int {
	if q.Limit > 0 {
		return q.Limit
	}
	return fallback
}
