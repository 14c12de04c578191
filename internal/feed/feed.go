// Package feed reads the article feed shown on the portfolio.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"
)

// DefaultLimit is the number of articles kept.
const DefaultLimit = 3

// DateLayout formats Article.PubDate.
const DateLayout = "2006-01-02"

// Article is a normalized feed item.
type Article struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	PubDate   string    `json:"pubDate"`
	Published time.Time `json:"published"`
}

// Reader fetches and normalizes a feed.
type Reader struct {
	url    string
	limit  int
	parser *gofeed.Parser
}

// NewReader returns a Reader for url keeping the limit most recent items.
// A nil client uses a 10 second timeout.
func NewReader(url string, limit int, client *http.Client) *Reader {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	p := gofeed.NewParser()
	p.Client = client
	return &Reader{url: url, limit: limit, parser: p}
}

// Latest fetches the feed and returns the most recent articles, newest first.
func (r *Reader) Latest(ctx context.Context) ([]Article, error) {
	f, err := r.parser.ParseURLWithContext(r.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("feed: parse %s: %w", r.url, err)
	}
	return Normalize(f.Items, r.limit), nil
}

// Normalize converts items to articles, newest first, keeping at most limit.
// Undated items sort after dated ones in their original order.
func Normalize(items []*gofeed.Item, limit int) []Article {
	articles := make([]Article, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		a := Article{Title: item.Title, Link: item.Link}
		switch {
		case item.PublishedParsed != nil:
			a.Published = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			a.Published = *item.UpdatedParsed
		}
		if !a.Published.IsZero() {
			a.PubDate = a.Published.Format(DateLayout)
		}
		articles = append(articles, a)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i].Published, articles[j].Published
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})

	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles
}
