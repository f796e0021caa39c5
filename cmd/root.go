package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/chauveaul/playbot/browser"
	"github.com/chauveaul/playbot/config"
	"github.com/chauveaul/playbot/daemon"
	"github.com/chauveaul/playbot/logger"
	"github.com/chauveaul/playbot/lyrics"
	"github.com/chauveaul/playbot/resolver"
	"github.com/chauveaul/playbot/store"
	"github.com/chauveaul/playbot/tui"
)

// recentLimit is how many tracks --recent prints.
const recentLimit = 10

// Swapped in tests.
var (
	newProvider = func(cfg config.PlayerConfig) (daemon.Provider, error) {
		return daemon.New(runtime.GOOS, daemon.Options{
			App:          cfg.App,
			MPRISService: cfg.MPRISService,
			Timeout:      cfg.Timeout,
		})
	}
	newLyrics = func(cfg config.LyricsConfig) resolver.LyricsFinder {
		return lyrics.NewClient(lyrics.Options{
			Providers:   cfg.Providers,
			Timeout:     cfg.Timeout,
			LRCLIBURL:   cfg.LRCLIBURL,
			GeniusURL:   cfg.GeniusURL,
			GeniusToken: cfg.GeniusToken,
		})
	}
	runBrowser = tui.Run
)

type options struct {
	configPath string
	refresh    bool
	recent     bool
	browse     bool
	search     string
	count      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "pb",
		Short:         "Show the song playing right now, with lyrics, and browse the ones you played before.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to the configuration file (default ~/.pb/config.yaml)")
	f.BoolVarP(&opts.refresh, "refresh", "r", false, "force refresh data even if cached")
	f.BoolVar(&opts.recent, "recent", false, "show recently queried songs")
	f.BoolVarP(&opts.browse, "browse", "b", false, "browse the database with an interactive TUI")
	f.StringVarP(&opts.search, "search", "s", "", "search the database by song title or artist name")
	f.BoolVarP(&opts.count, "count", "n", false, "count total tracks in the database")
	cmd.MarkFlagsMutuallyExclusive("browse", "search", "recent", "count")

	return cmd
}

// Execute executes the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cobra.Command, opts *options) error {
	if _, err := config.EnsureAppDir(); err != nil {
		return err
	}

	path, explicit := opts.configPath, opts.configPath != ""
	if !explicit {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Console: cfg.Log.Console,
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	out := cmd.OutOrStdout()
	if err := migrateLegacyDB(out, legacyDBPath, cfg.Database.Path); err != nil {
		return err
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	logger.Debugf("[cmd] store %s, config %s", st.Path(), path)

	switch {
	case opts.browse:
		engine, err := browser.New(ctx, st)
		if err != nil {
			return err
		}
		return runBrowser(ctx, engine)
	case opts.count:
		n, err := st.Count(ctx)
		if err != nil {
			return err
		}
		printCount(out, n)
		return nil
	case cmd.Flags().Changed("search"):
		return runSearch(ctx, out, st, cfg, opts.search)
	case opts.recent:
		tracks, err := st.Recent(ctx, recentLimit)
		if err != nil {
			return err
		}
		printRecent(out, tracks)
		return nil
	}

	provider, err := newProvider(cfg.Player)
	if err != nil {
		return err
	}
	res, err := resolver.New(provider, st, newLyrics(cfg.Lyrics)).Resolve(ctx, opts.refresh)
	if err != nil {
		return err
	}
	printResult(out, res)
	return nil
}

// runSearch prints matches and marks the live track. The player is asked on
// a best-effort basis; failing to reach it only drops the marker.
func runSearch(ctx context.Context, out io.Writer, st *store.Store, cfg *config.Config, query string) error {
	results, err := st.Search(ctx, query)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		printSearch(out, query, nil, "")
		return nil
	}

	currentID := ""
	if provider, err := newProvider(cfg.Player); err != nil {
		logger.Debugf("[cmd] no player for now-playing marker: %v", err)
	} else if np, err := provider.CurrentTrack(ctx); err != nil {
		logger.Debugf("[cmd] now-playing marker skipped: %v", err)
	} else if np != nil {
		currentID = np.ID
	}

	printSearch(out, query, results, currentID)
	return nil
}
