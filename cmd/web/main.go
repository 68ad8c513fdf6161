package main

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/cv-web/internal/config"
	mw "finitefield.org/cv-web/internal/middleware"
	"finitefield.org/cv-web/internal/observability"
)

var (
	templatesDir = "templates"
	publicDir    = "public"
	// devMode reparses templates on every request (CV_DEV).
	devMode   bool
	tmplCache *templateSet
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:           "cv-web",
		Short:         "Multilingual CV site",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file merged below the process environment")

	load := func() (config.Config, error) {
		cfg, err := config.Load(config.WithEnvFile(envFile))
		if err != nil {
			return config.Config{}, err
		}
		templatesDir = cfg.Server.TemplatesDir
		publicDir = cfg.Server.PublicDir
		devMode = cfg.DevMode
		return cfg, nil
	}

	serve := newServeCmd(load)
	root.AddCommand(serve, newCheckCmd(load), newExportCmd(load))
	// serve is the default command
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}

func newServeCmd(load func() (config.Config, error)) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := initTemplates(); err != nil {
				return err
			}
			logger, err := observability.NewLogger(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides CV_SERVER_ADDR)")
	return cmd
}

// templateSet holds the shared layout and partials plus one clone per page.
type templateSet struct {
	common *template.Template
	pages  map[string]*template.Template
}

var funcMap = template.FuncMap{
	"now": time.Now,
	// jsonld marks marshalled JSON-LD as safe script content.
	"jsonld": func(s string) template.JS { return template.JS(s) },
}

func parseTemplates() (*templateSet, error) {
	// Recursively discover all .tmpl files. Note: ParseGlob doesn't support **.
	var shared, pages []string
	if err := filepath.WalkDir(templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tmpl") {
			return nil
		}
		if filepath.Base(filepath.Dir(path)) == "pages" {
			pages = append(pages, path)
		} else {
			shared = append(shared, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(shared) == 0 || len(pages) == 0 {
		return nil, fmt.Errorf("no templates found under %s", templatesDir)
	}
	common, err := template.New("_root").Funcs(funcMap).ParseFiles(shared...)
	if err != nil {
		return nil, err
	}
	set := &templateSet{common: common, pages: map[string]*template.Template{}}
	for _, file := range pages {
		clone, err := common.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFiles(file); err != nil {
			return nil, err
		}
		set.pages[strings.TrimSuffix(filepath.Base(file), ".tmpl")] = clone
	}
	return set, nil
}

// initTemplates parses templates once unless devMode reparses per request.
func initTemplates() error {
	if devMode {
		return nil
	}
	tc, err := parseTemplates()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	tmplCache = tc
	return nil
}

func templates() (*templateSet, error) {
	if devMode {
		return parseTemplates()
	}
	if tmplCache == nil {
		return nil, errors.New("template not initialized")
	}
	return tmplCache, nil
}

// renderPage executes the base layout around the named page.
func renderPage(w http.ResponseWriter, r *http.Request, name string, status int, data any) {
	renderPagePart(w, r, name, "base", status, data)
}

// renderPagePart executes one block of a page, e.g. "page" for htmx swaps of
// everything below <body>.
func renderPagePart(w http.ResponseWriter, r *http.Request, name, part string, status int, data any) {
	ts, err := templates()
	if err != nil {
		http.Error(w, fmt.Sprintf("template parse error: %v", err), http.StatusInternalServerError)
		return
	}
	t, ok := ts.pages[name]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown page %q", name), http.StatusInternalServerError)
		return
	}
	execute(w, r, t, part, status, data)
}

// renderTemplate executes a shared fragment, used for htmx swaps.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, status int, data any) {
	ts, err := templates()
	if err != nil {
		http.Error(w, fmt.Sprintf("template parse error: %v", err), http.StatusInternalServerError)
		return
	}
	execute(w, r, ts.common, name, status, data)
}

func execute(w http.ResponseWriter, r *http.Request, t *template.Template, name string, status int, data any) {
	var buf strings.Builder
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		observability.FromContext(r.Context()).Error("template exec failed", zap.String("template", name), zap.Error(err))
		http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if mw.IsHTMX(r.Context()) {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}
