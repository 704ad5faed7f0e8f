// Command quickwebapps turns a web page into a launchable desktop
// application with a proper icon.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/sydlexius/quickwebapps/internal/browser"
	"github.com/sydlexius/quickwebapps/internal/config"
	"github.com/sydlexius/quickwebapps/internal/event"
	"github.com/sydlexius/quickwebapps/internal/favicon"
	"github.com/sydlexius/quickwebapps/internal/icon"
	"github.com/sydlexius/quickwebapps/internal/launcher"
	"github.com/sydlexius/quickwebapps/internal/logging"
	"github.com/sydlexius/quickwebapps/internal/registry"
	"github.com/sydlexius/quickwebapps/internal/watcher"
)

const usage = `usage: quickwebapps <command> [flags]

commands:
  create    create a web app launcher for a URL
  list      list created web apps
  remove    remove a web app launcher
  icons     search icon candidates for a reference
  browsers  list installed browsers
  watch     watch the icon directory and flag broken entries
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the wired services the subcommands pick from.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	resolver *icon.Resolver
	norm     *icon.Normalizer
}

func run(command string, args []string) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logCfg := logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	}
	// Structured text reads better on an interactive terminal; JSON is for
	// pipes and log collectors.
	if logCfg.Format == "" {
		logCfg.Format = "json"
		if term.IsTerminal(int(os.Stderr.Fd())) {
			logCfg.Format = "text"
		}
	}
	logger, logCloser := logging.New(logCfg)
	defer logCloser.Close() //nolint:errcheck
	slog.SetDefault(logger)

	downloader := favicon.NewDownloader(cfg.Paths.FaviconCache, logger)
	a := &app{
		cfg:      cfg,
		logger:   logger,
		resolver: icon.NewResolver(downloader, cfg.Paths.UserIcons, cfg.Paths.SystemIcons, logger),
		norm:     icon.NewNormalizer(cfg.Paths.AppIcons, logger),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "create":
		return a.create(ctx, args)
	case "list":
		return a.list(ctx)
	case "remove":
		return a.remove(ctx, args)
	case "icons":
		return a.icons(ctx, args)
	case "browsers":
		return a.browsers()
	case "watch":
		return a.watch(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func configPath() string {
	if p := os.Getenv("QW_CONFIG_PATH"); p != "" {
		return p
	}
	return config.HomeDir() + "/.config/quick-webapps/config.yaml"
}

func (a *app) openRegistry() (*sql.DB, *registry.Service, error) {
	db, err := registry.Open(a.cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening registry: %w", err)
	}
	if err := registry.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrating registry: %w", err)
	}
	return db, registry.NewService(db), nil
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	pageURL := fs.String("url", "", "web page URL (required)")
	name := fs.String("name", "", "display name (required)")
	iconRef := fs.String("icon", "", "icon reference: URL or local path (defaults to the page URL)")
	browserID := fs.String("browser", "", "browser catalog id (defaults to the first installed)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pageURL == "" || *name == "" {
		return fmt.Errorf("create requires -url and -name")
	}

	b, err := pickBrowser(*browserID)
	if err != nil {
		return err
	}

	db, reg, err := a.openRegistry()
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	if existing, err := reg.GetByName(ctx, *name); err != nil {
		return err
	} else if existing != nil {
		return fmt.Errorf("web app %q already exists", *name)
	}

	iconPath, err := a.resolveIcon(ctx, *pageURL, *iconRef, *name)
	if err != nil {
		return err
	}

	id := uuid.New().String()
	writer := launcher.NewWriter(a.cfg.Paths.Applications, config.HomeDir())
	entryPath, err := writer.Write(launcher.Entry{
		ID:      id,
		Name:    *name,
		URL:     *pageURL,
		Icon:    iconPath,
		Browser: b,
	})
	if err != nil {
		return err
	}

	if err := reg.Create(ctx, &registry.WebApp{
		ID:      id,
		Name:    *name,
		URL:     *pageURL,
		Icon:    iconPath,
		Browser: b.ID,
	}); err != nil {
		// The launcher entry is already on disk; roll it back so a failed
		// create leaves nothing behind.
		_ = writer.Remove(*name)
		return err
	}

	a.logger.Info("web app created",
		slog.String("name", *name),
		slog.String("launcher", entryPath),
		slog.String("icon", iconPath),
		slog.String("browser", b.ID))
	fmt.Println(entryPath)
	return nil
}

// resolveIcon runs the acquisition chain for a create call: direct
// resolution of the explicit reference (or the page URL), then the
// candidate search, and finally normalization of whatever was accepted.
func (a *app) resolveIcon(ctx context.Context, pageURL, iconRef, name string) (string, error) {
	ref := iconRef
	if ref == "" {
		ref = pageURL
	}

	if ic := a.resolver.ResolveSingle(ctx, ref); ic != nil {
		if ic.Kind == icon.KindVector {
			return a.norm.WriteVector(ic.Data, name)
		}
		return a.norm.Normalize(ic.Data, name)
	}

	fragment := icon.NameFromURL(pageURL)
	if fragment == "" {
		fragment = icon.Sanitize(name)
	}
	for _, c := range a.resolver.FindAll(ctx, ref, fragment) {
		if icon.IsVectorPath(c.Path) {
			return a.norm.CopyVector(c.Path, name)
		}
		data, err := os.ReadFile(c.Path)
		if err != nil {
			continue
		}
		return a.norm.Normalize(data, name)
	}

	return "", fmt.Errorf("no qualifying icon found for %q", ref)
}

func (a *app) list(ctx context.Context) error {
	db, reg, err := a.openRegistry()
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	apps, err := reg.List(ctx)
	if err != nil {
		return err
	}
	for _, w := range apps {
		marker := ""
		if w.IconMissing {
			marker = "  [icon missing]"
		}
		fmt.Printf("%s\t%s\t%s%s\n", w.Name, w.URL, w.Browser, marker)
	}
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	name := fs.String("name", "", "web app name (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("remove requires -name")
	}

	db, reg, err := a.openRegistry()
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	writer := launcher.NewWriter(a.cfg.Paths.Applications, config.HomeDir())
	if err := writer.Remove(*name); err != nil {
		return err
	}
	// The normalized icon file stays; cleaning the icon directory is left
	// to external tooling.
	if err := reg.Delete(ctx, *name); err != nil {
		return err
	}

	a.logger.Info("web app removed", slog.String("name", *name))
	return nil
}

func (a *app) icons(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("icons", flag.ExitOnError)
	ref := fs.String("ref", "", "icon reference: URL or local path (required)")
	fragment := fs.String("name", "", "name fragment for theme search (defaults from the URL)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ref == "" {
		return fmt.Errorf("icons requires -ref")
	}

	frag := *fragment
	if frag == "" {
		frag = icon.NameFromURL(*ref)
	}
	if frag == "" {
		return fmt.Errorf("icons requires -name for local references")
	}

	for _, c := range a.resolver.FindAll(ctx, *ref, frag) {
		if c.IsFavicon {
			fmt.Printf("%s\t(favicon)\n", c.Path)
			continue
		}
		fmt.Println(c.Path)
	}
	return nil
}

func (a *app) browsers() error {
	installed := browser.Installed()
	if len(installed) == 0 {
		fmt.Println("no supported browsers found")
		return nil
	}
	for _, b := range installed {
		fmt.Printf("%s\t%s\t%s\n", b.ID, b.Name, b.Exec)
	}
	return nil
}

func (a *app) watch(ctx context.Context) error {
	db, reg, err := a.openRegistry()
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	bus := event.NewBus(a.logger, 64)
	bus.Subscribe(event.IconMissing, func(e event.Event) {
		if err := reg.MarkIconMissing(context.Background(), e.Data["path"]); err != nil {
			a.logger.Error("flagging broken entry", slog.String("error", err.Error()))
		}
	})
	go bus.Start()
	defer bus.Stop()

	svc := watcher.NewService(a.cfg.Paths.AppIcons, bus, a.logger)
	return svc.Start(ctx)
}

func pickBrowser(id string) (browser.Browser, error) {
	if id != "" {
		b, ok := browser.ByID(id)
		if !ok {
			return browser.Browser{}, fmt.Errorf("unknown browser id %q", id)
		}
		return b, nil
	}
	installed := browser.Installed()
	if len(installed) == 0 {
		return browser.Browser{}, fmt.Errorf("no supported browser installed")
	}
	return installed[0], nil
}
