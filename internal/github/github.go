// Package github fetches the pinned repositories shown on the portfolio.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultEndpoint is the GitHub GraphQL API.
const DefaultEndpoint = "https://api.github.com/graphql"

// DefaultCount is the number of pinned repositories requested.
const DefaultCount = 6

// ErrNoToken is returned when no API token is configured.
var ErrNoToken = errors.New("github: GITHUB_TOKEN is not set")

// Language is a repository's primary language.
type Language struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Repository is a pinned repository.
type Repository struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	URL             string    `json:"url"`
	HomepageURL     string    `json:"homepageUrl,omitempty"`
	StargazerCount  int64     `json:"stargazerCount"`
	PrimaryLanguage *Language `json:"primaryLanguage,omitempty"`
}

// Pinned is the result of one fetch.
type Pinned struct {
	AvatarURL    string       `json:"avatarUrl"`
	Repositories []Repository `json:"repositories"`
}

// Options configures a Client.
type Options struct {
	Endpoint   string
	Token      string
	Count      int
	HTTPClient *http.Client
}

// Client queries the GraphQL API.
type Client struct {
	endpoint string
	token    string
	count    int
	http     *http.Client
}

// NewClient returns a Client with defaults applied.
func NewClient(opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Count <= 0 {
		opts.Count = DefaultCount
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		endpoint: opts.Endpoint,
		token:    opts.Token,
		count:    opts.Count,
		http:     opts.HTTPClient,
	}
}

const pinnedQuery = `query($count: Int!) {
  viewer {
    avatarUrl
    pinnedItems(first: $count, types: REPOSITORY) {
      nodes {
        ... on Repository {
          name
          description
          url
          homepageUrl
          stargazerCount
          primaryLanguage {
            name
            color
          }
        }
      }
    }
  }
}`

// PinnedRepositories issues the pinned repositories query. GraphQL-level
// errors are logged and yield an empty result rather than an error.
func (c *Client) PinnedRepositories(ctx context.Context) (*Pinned, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}

	body, err := json.Marshal(map[string]any{
		"query":     pinnedQuery,
		"variables": map[string]int{"count": c.count},
	})
	if err != nil {
		return nil, fmt.Errorf("github: encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("github: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("github: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github: unexpected status %s", resp.Status)
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("github: response is not valid JSON")
	}

	return parsePinned(raw), nil
}

func parsePinned(raw []byte) *Pinned {
	doc := gjson.ParseBytes(raw)
	if errs := doc.Get("errors"); errs.Exists() && len(errs.Array()) > 0 {
		log.Printf("GitHub API Error: %s", errs.Raw)
		return &Pinned{Repositories: []Repository{}}
	}

	viewer := doc.Get("data.viewer")
	out := &Pinned{
		AvatarURL:    viewer.Get("avatarUrl").String(),
		Repositories: []Repository{},
	}
	viewer.Get("pinnedItems.nodes").ForEach(func(_, node gjson.Result) bool {
		if !node.Get("name").Exists() {
			return true
		}
		repo := Repository{
			Name:           node.Get("name").String(),
			Description:    node.Get("description").String(),
			URL:            node.Get("url").String(),
			HomepageURL:    node.Get("homepageUrl").String(),
			StargazerCount: node.Get("stargazerCount").Int(),
		}
		if lang := node.Get("primaryLanguage"); lang.IsObject() {
			repo.PrimaryLanguage = &Language{
				Name:  lang.Get("name").String(),
				Color: lang.Get("color").String(),
			}
		}
		out.Repositories = append(out.Repositories, repo)
		return true
	})
	return out
}
