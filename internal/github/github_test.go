package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const pinnedResponse = `{
  "data": {
    "viewer": {
      "avatarUrl": "https://avatars.example.com/u/1",
      "pinnedItems": {
        "nodes": [
          {
            "name": "portfolio",
            "description": "personal site",
            "url": "https://github.com/kinn00kinn/portfolio",
            "homepageUrl": "https://kinn.dev",
            "stargazerCount": 1234,
            "primaryLanguage": {"name": "Go", "color": "#00ADD8"}
          },
          {
            "name": "notes",
            "description": null,
            "url": "https://github.com/kinn00kinn/notes",
            "homepageUrl": null,
            "stargazerCount": 0,
            "primaryLanguage": null
          }
        ]
      }
    }
  }
}`

func TestPinnedRepositories(t *testing.T) {
	var gotAuth string
	var gotCount float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Query     string             `json:"query"`
			Variables map[string]float64 `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if !strings.Contains(body.Query, "pinnedItems") {
			t.Errorf("query does not ask for pinnedItems: %s", body.Query)
		}
		gotCount = body.Variables["count"]
		w.Write([]byte(pinnedResponse))
	}))
	defer srv.Close()

	c := NewClient(Options{Endpoint: srv.URL, Token: "secret"})
	pinned, err := c.PinnedRepositories(context.Background())
	if err != nil {
		t.Fatalf("PinnedRepositories: %v", err)
	}

	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotCount != DefaultCount {
		t.Errorf("count variable = %v, want %d", gotCount, DefaultCount)
	}
	if pinned.AvatarURL != "https://avatars.example.com/u/1" {
		t.Errorf("AvatarURL = %q", pinned.AvatarURL)
	}
	if len(pinned.Repositories) != 2 {
		t.Fatalf("got %d repositories, want 2", len(pinned.Repositories))
	}

	first := pinned.Repositories[0]
	if first.Name != "portfolio" || first.StargazerCount != 1234 || first.HomepageURL != "https://kinn.dev" {
		t.Errorf("first repository = %+v", first)
	}
	if first.PrimaryLanguage == nil || first.PrimaryLanguage.Name != "Go" {
		t.Errorf("first language = %+v", first.PrimaryLanguage)
	}

	second := pinned.Repositories[1]
	if second.Description != "" || second.HomepageURL != "" || second.PrimaryLanguage != nil {
		t.Errorf("second repository = %+v, want empty optional fields", second)
	}
}

func TestPinnedRepositoriesAPIErrorYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"Bad credentials"}],"data":null}`))
	}))
	defer srv.Close()

	pinned, err := NewClient(Options{Endpoint: srv.URL, Token: "bad"}).PinnedRepositories(context.Background())
	if err != nil {
		t.Fatalf("PinnedRepositories returned error %v, want empty result", err)
	}
	if len(pinned.Repositories) != 0 {
		t.Errorf("got %d repositories, want 0", len(pinned.Repositories))
	}
}

func TestPinnedRepositoriesHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(Options{Endpoint: srv.URL, Token: "t"}).PinnedRepositories(context.Background())
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("err = %v, want status error", err)
	}
}

func TestPinnedRepositoriesWithoutToken(t *testing.T) {
	_, err := NewClient(Options{}).PinnedRepositories(context.Background())
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("err = %v, want ErrNoToken", err)
	}
}
