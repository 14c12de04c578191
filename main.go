package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/kinn00kinn/portfolio/internal/github"
	"github.com/kinn00kinn/portfolio/internal/ogimage"
	"github.com/kinn00kinn/portfolio/internal/store"
)

var (
	ogOutput  string
	fetchWhat string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Personal portfolio site",
		Long: `portfolio serves the profile page with its live boot screen and cursor,
renders the social preview card and fetches the project and article lists.

Configuration is read from the environment (and .env when present).`,
		RunE: runServe,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	ogCmd := &cobra.Command{
		Use:   "og-image",
		Short: "Render the social preview card to a PNG file",
		Args:  cobra.NoArgs,
		RunE:  runOGImage,
	}
	ogCmd.Flags().StringVarP(&ogOutput, "output", "o", "og-image.png", "Output filename")

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch pinned repositories and latest articles and print them as JSON",
		Args:  cobra.NoArgs,
		RunE:  runFetch,
	}
	fetchCmd.Flags().StringVar(&fetchWhat, "only", "", "Fetch only one source: repos or articles")

	rootCmd.AddCommand(serveCmd, ogCmd, fetchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	db, err := store.InitSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := newServer(cfg, db)
	if err != nil {
		return err
	}
	go srv.hub.Run(ctx)
	go srv.runVisitorCleanup(ctx)

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.routes(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}()

	log.Printf("Listening on :%s", cfg.Port)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func runOGImage(cmd *cobra.Command, args []string) error {
	r, err := ogimage.NewRenderer(nil)
	if err != nil {
		return err
	}
	fmt.Printf("→ Rendering %s... ", ogOutput)
	data, err := r.RenderPNG(cmd.Context(), ogCard())
	if err != nil {
		fmt.Println("failed")
		return err
	}
	if err := os.WriteFile(ogOutput, data, 0o644); err != nil {
		fmt.Println("failed")
		return fmt.Errorf("write %s: %w", ogOutput, err)
	}
	fmt.Printf("done (%d bytes)\n", len(data))
	return nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	gin.SetMode(gin.ReleaseMode)
	cfg := loadConfig()
	ctx := cmd.Context()
	out := map[string]any{}

	if fetchWhat == "" || fetchWhat == "repos" {
		pinned, err := newGitHubClient(cfg).PinnedRepositories(ctx)
		if err != nil && !errors.Is(err, github.ErrNoToken) {
			return fmt.Errorf("fetch repositories: %w", err)
		}
		if pinned == nil {
			pinned = &github.Pinned{}
		}
		out["repos"] = pinned.Repositories
		out["avatarUrl"] = pinned.AvatarURL
	}
	if fetchWhat == "" || fetchWhat == "articles" {
		articles, err := newFeedReader(cfg).Latest(ctx)
		if err != nil {
			return fmt.Errorf("fetch articles: %w", err)
		}
		out["articles"] = articles
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
