package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/wikiquiz/internal/handler"
	appI18n "github.com/pavelanni/wikiquiz/internal/i18n"
	"github.com/pavelanni/wikiquiz/internal/llm"
	"github.com/pavelanni/wikiquiz/internal/llm/prompts"
	"github.com/pavelanni/wikiquiz/internal/model"
	"github.com/pavelanni/wikiquiz/internal/quiz"
	"github.com/pavelanni/wikiquiz/internal/store"
	"github.com/pavelanni/wikiquiz/internal/wiki"
)

const (
	defaultLLMURL   = "https://api.groq.com/openai/v1"
	defaultLLMModel = "llama-3.3-70b-versatile"
)

//go:generate templ generate -path ../..

func main() {
	// A missing .env is fine; the environment and flags still apply.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: load .env:", err)
	}
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wikiquiz",
		Short: "Generate quizzes from Wikipedia articles with an LLM",
	}

	serve := serveCmd()
	root.AddCommand(serve, generateCmd(), importCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `wikiquiz --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addLLMFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("llm-url", defaultLLMURL, "OpenAI-compatible API base URL")
	f.String("llm-key", "", "API key for the LLM endpoint (or set WIKIQUIZ_LLM_KEY)")
	f.String("llm-model", defaultLLMModel, "LLM model name")
	f.String("prompt-variant", string(prompts.PromptBalanced), "Question difficulty mix (easy, balanced, challenging)")
	f.Int("min-questions", 5, "Minimum number of questions per quiz")
	f.Int("max-questions", 10, "Maximum number of questions per quiz")
}

func addCommonFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("db", "wikiquiz.db", "SQLite database path")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP quiz server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.StringP("lang", "l", "en", "Default UI language (en, ru)")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /quiz)")
	f.Bool("secure-cookies", true, "Set Secure flag on cookies")
	f.String("admin-password", "", "Initial admin password (or set WIKIQUIZ_ADMIN_PASSWORD)")
	f.Bool("skip-llm-check", false, "Do not contact the LLM endpoint at startup")
	f.Int("history-on-home", 5, "Number of recent quizzes listed on the home page")
	addLLMFlags(cmd)
	addCommonFlags(cmd)
	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate (or fetch the cached) quiz for a Wikipedia URL and print it as JSON",
		RunE:  runGenerate,
	}
	cmd.Flags().StringP("url", "u", "", "Wikipedia article URL (required)")
	addLLMFlags(cmd)
	addCommonFlags(cmd)
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import quiz payload JSON files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runImport,
	}
	addCommonFlags(cmd)
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all stored quizzes as JSON",
		RunE:  runExport,
	}
	cmd.Flags().StringP("output", "o", "-", "Output file path (- for stdout)")
	addCommonFlags(cmd)
	return cmd
}

// newQuizService wires the fetcher, the LLM client, and the store.
func newQuizService(v *viper.Viper, db *store.Store) (*quiz.Service, *llm.Client, error) {
	promptVariant := strings.ToLower(strings.TrimSpace(v.GetString("prompt-variant")))
	if !prompts.IsValidVariant(promptVariant) {
		slog.Warn("invalid prompt-variant, using balanced", "variant", promptVariant)
		promptVariant = string(prompts.PromptBalanced)
	}
	if v.GetString("llm-key") == "" {
		slog.Warn("no LLM API key configured; set --llm-key or WIKIQUIZ_LLM_KEY")
	}
	llmClient, err := llm.New(
		v.GetString("llm-url"),
		v.GetString("llm-key"),
		v.GetString("llm-model"),
		promptVariant,
		v.GetInt("min-questions"),
		v.GetInt("max-questions"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create LLM client: %w", err)
	}
	fetcher := wiki.NewFetcher(&http.Client{Timeout: 30 * time.Second})
	return quiz.NewService(fetcher, llmClient, db), llmClient, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := openStore(v)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := seedAdmin(db, v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	svc, llmClient, err := newQuizService(v, db)
	if err != nil {
		return err
	}
	if v.GetBool("skip-llm-check") {
		slog.Info("skipping LLM endpoint check")
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := llmClient.Ping(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("LLM health check: %w", err)
		}
		slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))
	}

	basePath := normalizeBasePath(v.GetString("base-path"))

	appCfg := model.AppConfig{
		BasePath:      basePath,
		SecureCookies: v.GetBool("secure-cookies"),
		PromptVariant: v.GetString("prompt-variant"),
		MinQuestions:  v.GetInt("min-questions"),
		MaxQuestions:  v.GetInt("max-questions"),
		HistoryOnHome: v.GetInt("history-on-home"),
	}

	h, err := handler.New(db, svc, appCfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := newRouter(h, basePath, lang)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"model", v.GetString("llm-model"),
		"llm_url", v.GetString("llm-url"),
		"lang", lang,
		"prompt_variant", appCfg.PromptVariant,
		"min_questions", appCfg.MinQuestions,
		"max_questions", appCfg.MaxQuestions,
		"base_path", basePath,
	)
	return http.ListenAndServe(addr, r)
}

// newRouter mounts the handler routes, under basePath when one is set.
func newRouter(h *handler.Handler, basePath, lang string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang, basePath))

	if basePath == "" {
		r.Use(h.BasePathMiddleware)
		h.Routes(r)
		return r
	}
	r.Route(basePath, func(sub chi.Router) {
		sub.Use(h.BasePathMiddleware)
		h.Routes(sub)
	})
	r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
	})
	return r
}

func normalizeBasePath(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := openStore(v)
	if err != nil {
		return err
	}
	defer db.Close()

	svc, _, err := newQuizService(v, db)
	if err != nil {
		return err
	}

	p, err := svc.Generate(cmd.Context(), v.GetString("url"))
	if err != nil {
		return fmt.Errorf("generate quiz: %w", err)
	}
	return writeJSON(os.Stdout, p)
}

func seedAdmin(db *store.Store, password string) error {
	count, err := db.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		slog.Warn("no admin user and no admin password; admin pages are disabled",
			"hint", "set --admin-password or WIKIQUIZ_ADMIN_PASSWORD")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = db.CreateUser(model.User{
		Username:     "admin",
		PasswordHash: string(hash),
		Active:       true,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	slog.Info("seeded default admin user", "username", "admin")
	return nil
}
