package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bodul/wordsearch/search"
)

// app carries state shared by all subcommands.
type app struct {
	configPath string
	verbose    bool
	ragged     string
	workers    int

	cfg    Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "wordsearch",
		Short: "Find words and X-shaped motifs in letter grids",
		Long: `wordsearch scans a rectangular letter grid for a word in all eight
directions, or for cells whose two diagonals form a three-letter motif.

Run "wordsearch serve" to expose the same searches over HTTP.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "wordsearch.yaml", "Path to YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.ragged, "ragged", "", "Ragged row policy: reject or clip")
	root.PersistentFlags().IntVarP(&a.workers, "workers", "w", 0, "Row-range workers per search (0 keeps config)")

	root.AddCommand(newWordsCmd(a), newMotifsCmd(a), newServeCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.logger == nil {
		config := zap.NewProductionConfig()
		if a.verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		a.logger = logger
	}

	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("ragged") {
		cfg.Search.Ragged = a.ragged
	}
	if a.workers > 0 {
		cfg.Search.Workers = a.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) loadGrid(path string) (*search.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := search.LoadGrid(f, a.cfg.RaggedPolicy())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	a.logger.Debug("grid loaded", zap.String("path", path), zap.Int("rows", g.Rows()), zap.Int("cols", g.Cols()))
	return g, nil
}

func newWordsCmd(a *app) *cobra.Command {
	var word, format, out string
	cmd := &cobra.Command{
		Use:   "words [file]",
		Short: "Find every straight-line occurrence of a word",
		Example: `  wordsearch words input.txt
  wordsearch words input.txt --word SAMX --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGrid(args[0])
			if err != nil {
				return err
			}
			if word == "" {
				word = a.cfg.Search.Word
			}
			matches, err := search.FindOccurrencesParallel(cmd.Context(), g, word, a.cfg.Search.Workers)
			if err != nil {
				return err
			}
			a.logger.Info("word search done", zap.String("word", word), zap.Int("matches", len(matches)))
			return a.emit(cmd, wordReport(g, word, matches), format, out)
		},
	}
	cmd.Flags().StringVar(&word, "word", "", "Word to search for (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Also write match positions to this file")
	return cmd
}

func newMotifsCmd(a *app) *cobra.Command {
	var motif, format, out string
	cmd := &cobra.Command{
		Use:   "motifs [file]",
		Short: "Find cells whose two diagonals both form a three-letter motif",
		Example: `  wordsearch motifs input.txt
  wordsearch motifs input.txt --motif MAS`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGrid(args[0])
			if err != nil {
				return err
			}
			if motif == "" {
				motif = a.cfg.Search.Motif
			}
			center, pair, err := search.ParseMotif(motif)
			if err != nil {
				return err
			}
			centers, err := search.FindMotifCentersParallel(cmd.Context(), g, center, pair, a.cfg.Search.Workers)
			if err != nil {
				return err
			}
			a.logger.Info("motif search done", zap.String("motif", motif), zap.Int("centers", len(centers)))
			return a.emit(cmd, motifReport(g, motif, centers), format, out)
		},
	}
	cmd.Flags().StringVar(&motif, "motif", "", "Three-letter motif, middle letter is the center (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Also write center positions to this file")
	return cmd
}

func (a *app) emit(cmd *cobra.Command, rep report, format, out string) error {
	if err := rep.write(cmd.OutOrStdout(), format); err != nil {
		return err
	}
	if out != "" {
		if err := rep.writePositions(out); err != nil {
			return err
		}
		a.logger.Debug("positions written", zap.String("path", out))
	}
	return nil
}

func newServeCmd(a *app) *cobra.Command {
	var port, dbPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the puzzle API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				a.cfg.Server.Port = port
			}
			if dbPath != "" {
				a.cfg.Store.Driver = "sqlite"
				a.cfg.Store.Path = dbPath
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (default from config or $PORT)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default: in-memory store)")
	return cmd
}

func (a *app) openStore(ctx context.Context) (Store, error) {
	if a.cfg.Store.Driver == "sqlite" {
		return OpenSQLStore(ctx, a.cfg.Store.Path)
	}
	return NewMemoryStore(), nil
}

func (a *app) serve(ctx context.Context) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	var transcriber imageTranscriber
	if a.cfg.Gemini.ProjectID != "" {
		gemini, err := NewGeminiClient(ctx, a.cfg.Gemini, a.logger)
		if err != nil {
			return fmt.Errorf("init gemini: %w", err)
		}
		defer gemini.Close()
		transcriber = gemini
		a.logger.Info("gemini client ready", zap.String("project", a.cfg.Gemini.ProjectID))
	} else {
		a.logger.Info("GCP_PROJECT_ID not set, image upload disabled")
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           NewServer(a.cfg, store, transcriber, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("server started", zap.String("addr", "http://localhost:"+a.cfg.Server.Port),
			zap.String("store", a.cfg.Store.Driver))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	a.logger.Info("server stopped")
	return nil
}
