package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const rss = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>kinn's articles</title>
    <link>https://zenn.dev/kinnkinn</link>
    <item>
      <title>Older post</title>
      <link>https://zenn.dev/kinnkinn/articles/older</link>
      <pubDate>Sat, 01 Mar 2025 09:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Newest post</title>
      <link>https://zenn.dev/kinnkinn/articles/newest</link>
      <pubDate>Wed, 05 Nov 2025 12:30:00 GMT</pubDate>
    </item>
    <item>
      <title>Undated post</title>
      <link>https://zenn.dev/kinnkinn/articles/undated</link>
    </item>
    <item>
      <title>Middle post</title>
      <link>https://zenn.dev/kinnkinn/articles/middle</link>
      <pubDate>Tue, 10 Jun 2025 08:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Oldest post</title>
      <link>https://zenn.dev/kinnkinn/articles/oldest</link>
      <pubDate>Mon, 06 Jan 2025 08:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func TestLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rss))
	}))
	defer srv.Close()

	articles, err := NewReader(srv.URL, 0, nil).Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(articles) != DefaultLimit {
		t.Fatalf("got %d articles, want %d", len(articles), DefaultLimit)
	}

	want := []struct{ title, date string }{
		{"Newest post", "2025-11-05"},
		{"Middle post", "2025-06-10"},
		{"Older post", "2025-03-01"},
	}
	for i, w := range want {
		if articles[i].Title != w.title || articles[i].PubDate != w.date {
			t.Errorf("article %d = %q %q, want %q %q", i, articles[i].Title, articles[i].PubDate, w.title, w.date)
		}
	}
	if articles[0].Link != "https://zenn.dev/kinnkinn/articles/newest" {
		t.Errorf("link = %q", articles[0].Link)
	}
}

func TestLatestKeepsUndatedLast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rss))
	}))
	defer srv.Close()

	articles, err := NewReader(srv.URL, 10, nil).Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	last := articles[len(articles)-1]
	if last.Title != "Undated post" || last.PubDate != "" {
		t.Errorf("last article = %+v, want undated post with empty date", last)
	}
}

func TestLatestBadFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a feed"))
	}))
	defer srv.Close()

	if _, err := NewReader(srv.URL, 3, nil).Latest(context.Background()); err == nil {
		t.Error("Latest on garbage returned nil error")
	}
}
