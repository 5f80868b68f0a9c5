package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"stock-analysis-agent/internal/api"
	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/types"
)

const newsAPIBaseURL = "https://newsapi.org"

// NewsAPIClient searches newsapi.org /v2/everything.
type NewsAPIClient struct {
	client   *api.Client
	language string
	sortBy   string
	pageSize int
}

var _ interfaces.NewsSource = (*NewsAPIClient)(nil)

type NewsAPIOption func(*NewsAPIClient, *[]api.ClientOption)

func WithNewsAPIBaseURL(u string) NewsAPIOption {
	return func(_ *NewsAPIClient, opts *[]api.ClientOption) {
		*opts = append(*opts, api.WithBaseURL(u))
	}
}

func WithNewsAPITimeout(d time.Duration) NewsAPIOption {
	return func(_ *NewsAPIClient, opts *[]api.ClientOption) {
		*opts = append(*opts, api.WithTimeout(d))
	}
}

// WithSearch overrides language and sort order. Empty values keep the defaults.
func WithSearch(language, sortBy string) NewsAPIOption {
	return func(c *NewsAPIClient, _ *[]api.ClientOption) {
		if language != "" {
			c.language = language
		}
		if sortBy != "" {
			c.sortBy = sortBy
		}
	}
}

func NewNewsAPIClient(apiKey string, opts ...NewsAPIOption) *NewsAPIClient {
	c := &NewsAPIClient{language: "en", sortBy: "relevancy", pageSize: 10}
	clientOpts := []api.ClientOption{
		api.WithBaseURL(newsAPIBaseURL),
		api.WithTimeout(20 * time.Second),
		api.WithLogging(true),
	}
	for _, opt := range opts {
		opt(c, &clientOpts)
	}
	// the key header is appended last so no option can drop it
	clientOpts = append(clientOpts, api.WithHeader("X-Api-Key", apiKey))
	c.client = api.NewClient(clientOpts...)
	return c
}

func (c *NewsAPIClient) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Content     string    `json:"content"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

func (c *NewsAPIClient) Fetch(ctx context.Context, q types.NewsQuery) ([]types.NewsArticle, error) {
	resp, err := c.client.GET(ctx, "/v2/everything", url.Values{
		"q":        {Query(q)},
		"language": {c.language},
		"sortBy":   {c.sortBy},
		"pageSize": {strconv.Itoa(limit(q, c.pageSize))},
	})
	if err != nil {
		return nil, fmt.Errorf("newsapi: %w", describe(err))
	}

	var body newsAPIResponse
	if err := resp.ParseJSON(&body); err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("newsapi: status %q: %s", body.Status, body.Message)
	}

	articles := make([]types.NewsArticle, 0, len(body.Articles))
	for _, a := range body.Articles {
		articles = append(articles, types.NewsArticle{
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
			Source:      a.Source.Name,
		})
	}
	return clean(articles), nil
}

// describe surfaces the NewsAPI error message carried in a non-2xx body.
func describe(err error) error {
	var he *api.HTTPError
	if !errors.As(err, &he) {
		return err
	}
	var body newsAPIResponse
	if json.Unmarshal([]byte(he.Body), &body) == nil && body.Message != "" {
		return fmt.Errorf("%w (%s: %s)", err, body.Code, body.Message)
	}
	return err
}
