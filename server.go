package main

import (
	"context"
	"database/sql"
	"errors"
	"html/template"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/kinn00kinn/portfolio/internal/clock"
	"github.com/kinn00kinn/portfolio/internal/feed"
	"github.com/kinn00kinn/portfolio/internal/github"
	"github.com/kinn00kinn/portfolio/internal/live"
	"github.com/kinn00kinn/portfolio/internal/ogimage"
	"github.com/kinn00kinn/portfolio/internal/reveal"
	"github.com/kinn00kinn/portfolio/internal/store"
	"github.com/kinn00kinn/portfolio/internal/theme"
)

// Cache keys.
const (
	pinnedCacheKey   = "github:pinned"
	articlesCacheKey = "feed:articles"
	ogImageCacheKey  = "og:image"
)

type server struct {
	cfg      config
	clock    clock.Clock
	visitors *store.Visitors
	cache    *store.Cache
	github   *github.Client
	feed     *feed.Reader
	og       *ogimage.Renderer
	card     ogimage.Card
	hub      *live.Hub

	adminToken  string
	hashingSalt string
}

func newServer(cfg config, db *sql.DB) (*server, error) {
	og, err := ogimage.NewRenderer(nil)
	if err != nil {
		return nil, err
	}
	s := &server{
		cfg:      cfg,
		clock:    clock.Real(),
		visitors: store.NewVisitors(db),
		cache:    store.NewCache(db, cfg.CacheTTL),
		github:   newGitHubClient(cfg),
		feed:     newFeedReader(cfg),
		og:       og,
		card:     ogCard(),
		hub:      live.NewHub(clock.Real(), nil),
	}
	s.initAdminToken()
	return s, nil
}

func newGitHubClient(cfg config) *github.Client {
	return github.NewClient(github.Options{
		Endpoint: cfg.GitHubEndpoint,
		Token:    cfg.GitHubToken,
	})
}

func newFeedReader(cfg config) *feed.Reader {
	return feed.NewReader(cfg.FeedURL, feed.DefaultLimit, nil)
}

func ogCard() ogimage.Card {
	return ogimage.Card{Name: profile.Name, Role: profile.Role, AvatarURL: profile.AvatarURL}
}

var templateFuncs = template.FuncMap{
	"comma": humanize.Comma,
	"ago":   humanize.Time,
	// dict builds the argument map for the glitch and techButton partials.
	"dict": func(kv ...any) map[string]any {
		m := make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			if k, ok := kv[i].(string); ok {
				m[k] = kv[i+1]
			}
		}
		return m
	},
}

func (s *server) routes() *gin.Engine {
	r := gin.Default()
	r.SetFuncMap(templateFuncs)
	r.LoadHTMLGlob("templates/*")

	r.Static("/images", "./images")
	r.Static("/static", "./static")

	r.Use(s.visitorTrackingMiddleware())

	r.GET("/", s.home)
	r.GET("/og-image.png", s.ogImage)
	r.GET("/typewriter", s.typewriter)
	r.GET("/ws", func(c *gin.Context) {
		s.hub.ServeWS(c.Writer, c.Request)
	})
	r.POST("/theme", s.toggleTheme)

	s.setupAdminRoutes(r)
	return r
}

// Home page route
func (s *server) home(c *gin.Context) {
	ctx := c.Request.Context()

	pinned, err := store.Load(ctx, s.cache, pinnedCacheKey, s.github.PinnedRepositories)
	if err != nil {
		if !errors.Is(err, github.ErrNoToken) {
			log.Printf("Error loading pinned repositories: %v", err)
		}
		pinned = &github.Pinned{}
	}
	articles, err := store.Load(ctx, s.cache, articlesCacheKey, s.feed.Latest)
	if err != nil {
		log.Printf("Error loading articles: %v", err)
		articles = nil
	}

	avatar := profile.AvatarURL
	if pinned.AvatarURL != "" {
		avatar = pinned.AvatarURL
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"profile":  profile,
		"avatar":   avatar,
		"history":  history,
		"repos":    pinned.Repositories,
		"articles": articles,
		"theme":    theme.FromRequest(c).Read(),
		"bootText": reveal.BootScript[0],
	})
}

// ogImage serves the preview card. The PNG goes through the fetch cache so
// the avatar is downloaded once per TTL.
func (s *server) ogImage(c *gin.Context) {
	data, err := store.Load(c.Request.Context(), s.cache, ogImageCacheKey, func(ctx context.Context) ([]byte, error) {
		return s.og.RenderPNG(ctx, s.card)
	})
	if err != nil {
		log.Printf("Error rendering OG image: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", data)
}

// typewriter streams the reveal of one profile field as server-sent events.
// Each "reveal" event carries the full revealed prefix.
func (s *server) typewriter(c *gin.Context) {
	text, ok := typewriterText(c.Query("field"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown field"})
		return
	}

	opts := reveal.Options{
		Speed:      queryMillis(c, "speed"),
		StartDelay: queryMillis(c, "delay"),
		HideCursor: c.Query("cursor") == "false",
	}
	updates := make(chan reveal.TypewriterState, len([]rune(text))+2)
	opts.OnUpdate = func(st reveal.TypewriterState) {
		select {
		case updates <- st:
		default:
		}
	}

	tw := reveal.NewTypewriter(s.clock, text, opts)
	tw.Start()
	defer tw.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case st := <-updates:
			c.SSEvent("reveal", gin.H{
				"text":     st.Render(),
				"revealed": st.Revealed,
				"total":    st.Total,
				"done":     st.Done,
			})
			return !st.Done
		}
	})
}

// maxQueryMillis caps speed and delay so a huge value cannot overflow.
const maxQueryMillis = 60_000

func queryMillis(c *gin.Context, key string) time.Duration {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		return 0
	}
	return time.Duration(min(ms, maxQueryMillis)) * time.Millisecond
}

func (s *server) toggleTheme(c *gin.Context) {
	t := theme.FromRequest(c).Toggle()
	if c.GetHeader("Accept") == "application/json" || c.GetHeader("HX-Request") == "true" {
		c.JSON(http.StatusOK, gin.H{"theme": t})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}
