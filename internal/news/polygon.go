package news

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"stock-analysis-agent/internal/interfaces"
	"stock-analysis-agent/internal/types"
)

// PolygonNewsSource lists the newest ticker news from Polygon.io.
type PolygonNewsSource struct {
	client *polygon.Client
}

var _ interfaces.NewsSource = (*PolygonNewsSource)(nil)

// NewPolygonNewsSource shares an existing REST client, typically the market provider's.
func NewPolygonNewsSource(client *polygon.Client) *PolygonNewsSource {
	return &PolygonNewsSource{client: client}
}

func (p *PolygonNewsSource) Name() string { return "polygon" }

func (p *PolygonNewsSource) Fetch(ctx context.Context, q types.NewsQuery) ([]types.NewsArticle, error) {
	n := limit(q, 10)
	params := models.ListTickerNewsParams{}.
		WithTicker(models.EQ, q.Ticker).
		WithSort(models.PublishedUTC).
		WithOrder(models.Desc).
		WithLimit(n)

	iter := p.client.ListTickerNews(ctx, params)

	var articles []types.NewsArticle
	for len(articles) < n && iter.Next() {
		articles = append(articles, fromTickerNews(iter.Item()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("polygon news %s: %w", q.Ticker, err)
	}
	return clean(articles), nil
}

func fromTickerNews(n models.TickerNews) types.NewsArticle {
	return types.NewsArticle{
		Title:       n.Title,
		Description: n.Description,
		URL:         n.ArticleURL,
		PublishedAt: time.Time(n.PublishedUTC),
		Source:      n.Publisher.Name,
	}
}
