package news

import (
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/stretchr/testify/assert"

	"stock-analysis-agent/internal/types"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  Apple   beats\nestimates ", "Apple beats estimates"},
		{"markup", `<a href="https://x">Apple beats</a>&nbsp;<font color="#6f6f6f">Reuters</font>`, "Apple beats Reuters"},
		{"entities", "Q3 &amp; Q4", "Q3 & Q4"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}

func TestTrimContent(t *testing.T) {
	assert.Equal(t, "Shares rose 4% on Tuesday after the", TrimContent("Shares rose 4% on Tuesday after the [+2345 chars]"))
	assert.Equal(t, "no marker", TrimContent("no marker"))
}

func TestQuery(t *testing.T) {
	q := Query(types.NewsQuery{Ticker: "TSLA", CompanyName: "Tesla, Inc."})
	assert.Equal(t, `("Tesla, Inc." OR "TSLA") AND (stock OR shares OR earnings OR "price target" OR analyst OR market OR investors)`, q)

	q = Query(types.NewsQuery{Ticker: "TSLA"})
	assert.Contains(t, q, `("TSLA" OR "TSLA")`)
}

func TestCleanDropsEmptyArticles(t *testing.T) {
	out := clean([]types.NewsArticle{
		{Title: "<b>Kept</b>"},
		{Title: "  ", Description: "<p></p>"},
		{Content: "only content [+10 chars]"},
	})
	assert.Len(t, out, 2)
	assert.Equal(t, "Kept", out[0].Title)
	assert.Equal(t, "only content", out[1].Content)
}

func TestFromTickerNews(t *testing.T) {
	published := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)
	var n models.TickerNews
	n.Title = "Apple unveils new chip"
	n.Description = "The M4 chip..."
	n.ArticleURL = "https://example.com/a"
	n.PublishedUTC = models.Time(published)
	n.Publisher.Name = "Benzinga"

	a := fromTickerNews(n)
	assert.Equal(t, "Apple unveils new chip", a.Title)
	assert.Equal(t, "https://example.com/a", a.URL)
	assert.Equal(t, "Benzinga", a.Source)
	assert.True(t, published.Equal(a.PublishedAt))
}
