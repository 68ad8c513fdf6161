package main

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/cv-web/internal/config"
	handlersPkg "finitefield.org/cv-web/internal/handlers"
	"finitefield.org/cv-web/internal/i18n"
	"finitefield.org/cv-web/internal/observability"
	"finitefield.org/cv-web/internal/page"
	"finitefield.org/cv-web/internal/render"
	"finitefield.org/cv-web/internal/seo"
)

func newCheckCmd(load func() (config.Config, error)) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load every document for every language and report the status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			// keep stdout for the report
			logger, err := observability.NewLogger("error")
			if err != nil {
				return err
			}
			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			summary := a.checker.Check(cmd.Context())
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				err = enc.Encode(summary)
			} else {
				err = summary.WriteText(out)
			}
			if err != nil {
				return err
			}
			if !summary.OK() {
				return fmt.Errorf("%d document(s) failed to load", summary.Failures())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func newExportCmd(load func() (config.Config, error)) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every page for every language as static HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger, err := observability.NewLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			ts, err := parseTemplates()
			if err != nil {
				return fmt.Errorf("parse templates: %w", err)
			}
			a, err := newApp(cfg, logger, render.WithPathPrefix(languagePrefix))
			if err != nil {
				return err
			}
			n, err := a.export(cmd, ts, outDir)
			if err != nil {
				return err
			}
			logger.Info("export finished", zap.String("out", outDir), zap.Int("pages", n))
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "dist", "output directory")
	return cmd
}

func languagePrefix(lang i18n.Code) string { return "/" + lang.String() }

// export renders all pages of all languages below outDir and returns the
// number of pages written.
func (a *app) export(cmd *cobra.Command, ts *templateSet, outDir string) (int, error) {
	ctx := cmd.Context()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, err
	}
	langs := i18n.Supported()
	counts := make([]int, len(langs))
	g, ctx := errgroup.WithContext(ctx)
	for i, lang := range langs {
		g.Go(func() error {
			prefix := languagePrefix(lang)
			write := func(rel string, tmpl string, data any) error {
				counts[i]++
				return writePage(filepath.Join(outDir, filepath.FromSlash(prefix+rel), "index.html"), ts.pages[tmpl], data)
			}

			p := a.ctrl.Load(ctx, lang)
			home := a.homeData("/", "", p, handlersPkg.FeedbackData{Text: p.Text})
			a.staticLayout(&home.Layout, prefix, "/")
			if err := write("/", "home", home); err != nil {
				return err
			}

			tl := handlersPkg.TimelineData{
				Layout:   handlersPkg.NewLayout("/timeline", p.Text, a.meta("/timeline", lang, p.Text.T("timeline_page_title"), home.SEO.Description), ""),
				Timeline: p.Timeline,
			}
			a.staticLayout(&tl.Layout, prefix, "/timeline")
			if err := write("/timeline", "timeline", tl); err != nil {
				return err
			}

			for _, section := range []string{page.SectionCareer, page.SectionEducation} {
				slugs, err := a.ctrl.Slugs(ctx, lang, section)
				if err != nil {
					a.logger.Warn("skipping detail pages", zap.String("lang", lang.String()), zap.String("section", section), zap.Error(err))
					continue
				}
				for _, slug := range slugs {
					d, err := a.ctrl.Detail(ctx, lang, section, slug)
					if err != nil {
						return err
					}
					rel := "/" + section + "/" + slug
					data := a.detailData(rel, d, "")
					a.staticLayout(&data.Layout, prefix, rel)
					if err := write(rel, "detail", data); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := writeRedirect(filepath.Join(outDir, "index.html"), languagePrefix(i18n.Default)+"/"); err != nil {
		return 0, err
	}
	assets := filepath.Join(outDir, "assets")
	if err := os.RemoveAll(assets); err != nil {
		return 0, err
	}
	if err := os.CopyFS(assets, os.DirFS(filepath.Join(publicDir, "assets"))); err != nil {
		return 0, fmt.Errorf("copy assets: %w", err)
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	return total, nil
}

// staticLayout points canonical and alternate links at the exported paths.
func (a *app) staticLayout(l *handlersPkg.Layout, prefix, rel string) {
	l.StaticExport(prefix)
	l.SEO.Canonical = seo.Absolute(a.cfg.Server.BaseURL, path.Join(prefix, rel)+"/")
	l.SEO.OG.URL = l.SEO.Canonical
	l.SEO.Alternates = l.SEO.Alternates[:0]
	for _, code := range i18n.Supported() {
		href := seo.Absolute(a.cfg.Server.BaseURL, path.Join(languagePrefix(code), rel)+"/")
		l.SEO.Alternates = append(l.SEO.Alternates, seo.Alternate{Href: href, Hreflang: code.String()})
	}
}

func writePage(file string, t *template.Template, data any) error {
	if t == nil {
		return fmt.Errorf("export %s: missing template", file)
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if err := t.ExecuteTemplate(f, "base", data); err != nil {
		_ = f.Close()
		return fmt.Errorf("export %s: %w", file, err)
	}
	return f.Close()
}

func writeRedirect(file, target string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "<!doctype html><meta charset=\"utf-8\"><meta http-equiv=\"refresh\" content=\"0; url=%s\"><link rel=\"canonical\" href=\"%s\">\n",
		template.HTMLEscapeString(target), template.HTMLEscapeString(target))
	return os.WriteFile(file, []byte(b.String()), 0o644)
}
