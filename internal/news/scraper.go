package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/logger"
	"stock-analysis-agent/internal/types"
)

const googleNewsBaseURL = "https://news.google.com"

// GoogleNewsScraper reads the Google News search RSS feed. It needs no API key
// and is the usual last resort in the source chain.
type GoogleNewsScraper struct {
	baseURL string
	timeout time.Duration
	locale  string
}

var _ interfaces.NewsSource = (*GoogleNewsScraper)(nil)

type ScraperOption func(*GoogleNewsScraper)

func WithScraperBaseURL(u string) ScraperOption {
	return func(s *GoogleNewsScraper) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithLocale sets the feed edition, e.g. "en-IN" for Indian listings.
func WithLocale(locale string) ScraperOption {
	return func(s *GoogleNewsScraper) {
		if locale != "" {
			s.locale = locale
		}
	}
}

func NewGoogleNewsScraper(timeout time.Duration, opts ...ScraperOption) *GoogleNewsScraper {
	s := &GoogleNewsScraper{baseURL: googleNewsBaseURL, timeout: timeout, locale: "en-US"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *GoogleNewsScraper) Name() string { return "google_rss" }

func (s *GoogleNewsScraper) Fetch(ctx context.Context, q types.NewsQuery) ([]types.NewsArticle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	maxArticles := limit(q, 10)
	articles := []types.NewsArticle{}

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(s.baseURL)),
		colly.MaxDepth(1),
		// Synchronous is the default; colly v2.1.0's Async ignores its argument
		// and would enable async mode, so the option is not passed.
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnXML("//item", func(e *colly.XMLElement) {
		if len(articles) >= maxArticles {
			return
		}
		source := strings.TrimSpace(e.ChildText("source"))
		title := strings.TrimSpace(e.ChildText("title"))
		if source != "" {
			title = strings.TrimSuffix(title, " - "+source)
		}
		link := strings.TrimSpace(e.ChildText("link"))
		if title == "" || link == "" {
			return
		}
		articles = append(articles, types.NewsArticle{
			Title:       title,
			Description: e.ChildText("description"),
			URL:         link,
			PublishedAt: parsePubDate(e.ChildText("pubDate")),
			Source:      source,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.Debug(ctx, "Google News feed error", "status", r.StatusCode, "error", err)
	})

	feedURL := s.feedURL(q)
	if err := c.Visit(feedURL); err != nil {
		return nil, fmt.Errorf("failed to scrape Google News: %w", err)
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return clean(articles), nil
}

func (s *GoogleNewsScraper) feedURL(q types.NewsQuery) string {
	term := q.Ticker + " stock"
	if q.CompanyName != "" && !strings.EqualFold(q.CompanyName, q.Ticker) {
		term = `"` + q.CompanyName + `" OR ` + q.Ticker + " stock"
	}
	country := s.locale
	if i := strings.LastIndex(country, "-"); i >= 0 {
		country = country[i+1:]
	}
	lang := strings.SplitN(s.locale, "-", 2)[0]

	v := url.Values{}
	v.Set("q", term)
	v.Set("hl", s.locale)
	v.Set("gl", country)
	v.Set("ceid", country+":"+lang)
	return s.baseURL + "/rss/search?" + v.Encode()
}

func parsePubDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC1123, time.RFC1123Z, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// getDomain extracts the host colly should be restricted to.
func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
