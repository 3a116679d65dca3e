package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/panels/internal/browse"
	"github.com/pders01/panels/internal/cache"
	"github.com/pders01/panels/internal/comic"
	"github.com/pders01/panels/internal/config"
	"github.com/pders01/panels/internal/debuglog"
	"github.com/pders01/panels/internal/media"
	"github.com/pders01/panels/internal/storage"
	"github.com/pders01/panels/internal/tui"
	"github.com/pders01/panels/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	debug      bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:           "panels",
	Short:         "Browse a numbered web comic archive in the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write debug logs")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Skip startup banner")

	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(versionCmd, configCmd, pageCmd, showCmd, searchCmd, favoritesCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// session holds the collaborators shared by the TUI and the subcommands.
type session struct {
	cfg    *config.Config
	paths  *validation.PathHandler
	client *comic.Client
	ctrl   *browse.Controller
	store  *storage.Store
}

// openSession loads the configuration and wires the fetcher, cache and
// controller. The favorites database is only opened when withStore is set
// so read-only commands do not contend for its lock.
func openSession(withStore bool) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if debug {
		cfg.Log.Level = debuglog.LevelDebug.String()
	}

	paths, err := validation.NewPathHandler()
	if err != nil {
		return nil, err
	}

	if level := debuglog.ParseLevel(cfg.Log.Level); level != debuglog.LevelOff {
		logPath, err := paths.LogPath(cfg.Log.File)
		if err != nil {
			return nil, fmt.Errorf("invalid log path: %w", err)
		}
		if err := debuglog.Setup(level, logPath); err != nil {
			return nil, err
		}
	}

	client, err := comic.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:    cfg,
		paths:  paths,
		client: client,
		ctrl: browse.NewController(client, cache.New(), browse.Options{
			PageSize:  cfg.Browse.PageSize,
			BatchSize: cfg.Browse.BatchSize,
		}),
	}

	if withStore {
		dbPath, err := paths.DBPath(cfg.Database.Path)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("invalid database path: %w", err)
		}
		store, err := storage.NewStoreWithTimeout(dbPath, cfg.Database.Timeout)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.store = store
	}

	debuglog.Infof("session ready: source %s", client.BaseURL())
	return s, nil
}

func (s *session) Close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			debuglog.Warnf("closing database: %v", err)
		}
	}
	_ = debuglog.Close()
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if !quiet {
		tui.ShowBanner(cmd.OutOrStdout(), Version)
	}

	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	app := tui.NewApp(s.cfg, tui.Deps{
		Controller: s.ctrl,
		Store:      s.store,
		Images:     s.client,
		Opener:     media.NewLauncher(s.cfg),
		BaseURL:    s.client.BaseURL(),
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}
