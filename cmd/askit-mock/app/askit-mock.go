package app

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ZhangYouJie-Major/AskIt/internal/adapters/docstore"
	"github.com/ZhangYouJie-Major/AskIt/internal/config"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/ports"
	"github.com/ZhangYouJie-Major/AskIt/internal/infrastructure/mockserver"
	"github.com/ZhangYouJie-Major/AskIt/internal/logger"
)

type options struct {
	configPath string
	addr       string
	store      string
	dataPath   string
	prefix     string
	delay      time.Duration
	chunks     int
}

func NewCommand(version string) *cobra.Command {
	opt := &options{}
	cmd := &cobra.Command{
		Use:          "askit-mock",
		Short:        "Run a local AskIt API double",
		Long:         "askit-mock serves the AskIt HTTP API from an in-memory or SQLite registry, for client development and tests",
		Example:      "askit-mock --addr :8000 --store sqlite --data ./mock.db --delay 2s",
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opt)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opt.configPath, "config", "c", "", "config file path")
	fs.StringVar(&opt.addr, "addr", "", "listen address (default from mock_addr)")
	fs.StringVar(&opt.store, "store", "", "document registry: memory or sqlite")
	fs.StringVar(&opt.dataPath, "data", "", "SQLite file for --store sqlite")
	fs.StringVar(&opt.prefix, "prefix", mockserver.DefaultPrefix, "API path prefix")
	fs.DurationVar(&opt.delay, "delay", 0, "time until uploads become vectorized; 0 keeps them pending")
	fs.IntVar(&opt.chunks, "chunks", mockserver.DefaultChunkCount, "chunk_count reported once vectorized")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "version:", version)
		},
	})
	return cmd
}

func run(cmd *cobra.Command, opt *options) error {
	cfg, err := config.Load(opt.configPath)
	if err != nil {
		return err
	}
	logger.InitLogger(cfg.LogLevel)

	if opt.addr != "" {
		cfg.MockAddr = opt.addr
	}
	if opt.store != "" {
		cfg.MockStore = opt.store
	}
	if opt.dataPath != "" {
		cfg.MockDataPath = opt.dataPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := mockserver.New(mockserver.Config{
		Prefix:          opt.prefix,
		Store:           store,
		ProcessingDelay: opt.delay,
		ChunkCount:      opt.chunks,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(cfg.MockAddr) }()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serving")
	case <-ctx.Done():
		logger.Logger().Info("shutting down mock server")
		return srv.Shutdown()
	}
}

func openStore(cfg *config.Config) (ports.DocumentStore, func() error, error) {
	switch cfg.MockStore {
	case "sqlite":
		s, err := docstore.NewSQLiteStore(cfg.MockDataPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		s := docstore.NewInMemoryStore()
		return s, s.Close, nil
	}
}
