package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	archiveCH "github.com/AtsukiTak/bitcoinrs/internal/archive/clickhouse"
	"github.com/AtsukiTak/bitcoinrs/internal/chainstate"
	"github.com/AtsukiTak/bitcoinrs/internal/ingest"
	"github.com/AtsukiTak/bitcoinrs/internal/metrics"
	"github.com/AtsukiTak/bitcoinrs/internal/notify"
	"github.com/AtsukiTak/bitcoinrs/internal/query"
	"github.com/AtsukiTak/bitcoinrs/internal/source/bitcoin"
	"github.com/AtsukiTak/bitcoinrs/internal/subscription"
	"github.com/AtsukiTak/bitcoinrs/internal/transport"
)

type config struct {
	Addr    string `long:"addr" env:"BITCOINWATCH_ADDR" description:"API listen address" default:":8080"`
	Network string `long:"network" env:"BITCOINWATCH_NETWORK" description:"network name" default:"mainnet"`

	RPCURL      string `long:"rpc-url" env:"BITCOINWATCH_RPC_URL" description:"Bitcoin RPC URL" default:"http://127.0.0.1:8332"`
	RPCUser     string `long:"rpc-user" env:"BITCOINWATCH_RPC_USER" description:"Bitcoin RPC username"`
	RPCPassword string `long:"rpc-password" env:"BITCOINWATCH_RPC_PASSWORD" description:"Bitcoin RPC password"`
	ZMQAddr     string `long:"zmq-addr" env:"BITCOINWATCH_ZMQ_ADDR" description:"node zmq hashblock endpoint (optional)"`

	ClickhouseDSN string `long:"clickhouse-dsn" env:"BITCOINWATCH_CLICKHOUSE_DSN" description:"ClickHouse DSN for the block event journal (optional)"`

	Window        uint64 `long:"window" env:"BITCOINWATCH_WINDOW" description:"observation window in blocks" default:"5000"`
	MaxReorgDepth int    `long:"max-reorg-depth" env:"BITCOINWATCH_MAX_REORG_DEPTH" description:"deepest rollback the store keeps undo data for" default:"100"`
	StartHeight   uint64 `long:"start-height" env:"BITCOINWATCH_START_HEIGHT" description:"first height to ingest on an empty store, 0 means the node tip"`

	PollInterval  time.Duration `long:"poll-interval" env:"BITCOINWATCH_POLL_INTERVAL" description:"pause between catch-up iterations" default:"10s"`
	WatchTTL      time.Duration `long:"watch-ttl" env:"BITCOINWATCH_WATCH_TTL" description:"watch lifetime without a refresh" default:"10m"`
	SweepInterval time.Duration `long:"sweep-interval" env:"BITCOINWATCH_SWEEP_INTERVAL" description:"pause between expired watch sweeps" default:"30s"`
	Workers       int           `long:"dispatch-workers" env:"BITCOINWATCH_DISPATCH_WORKERS" description:"dispatch fan-out concurrency" default:"8"`
	MaxWSClients  int           `long:"max-ws-clients" env:"BITCOINWATCH_MAX_WS_CLIENTS" description:"websocket client cap" default:"64"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("bitcoinwatch failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	store := chainstate.New(chainstate.Config{
		Window:        cfg.Window,
		MaxReorgDepth: cfg.MaxReorgDepth,
	}, logger)

	registry := subscription.NewRegistry(subscription.Config{
		TTL:           cfg.WatchTTL,
		SweepInterval: cfg.SweepInterval,
	}, metrics.NewSubscriptions(), logger)

	engine := query.NewEngine(store, metrics.NewQuery(), logger)

	dispatcher := notify.NewDispatcher(notify.Config{
		Workers: cfg.Workers,
	}, engine, registry, metrics.NewDispatcher(), logger)

	source, closeRPC, err := newSource(cfg)
	if err != nil {
		return err
	}
	defer closeRPC()

	startHeight := cfg.StartHeight

	var archive ingest.Archive
	if cfg.ClickhouseDSN != "" {
		repo, err := archiveCH.NewRepository(cfg.ClickhouseDSN, metrics.NewArchive())
		if err != nil {
			return fmt.Errorf("init archive: %w", err)
		}
		defer func() {
			_ = repo.Close()
		}()
		if err := repo.Ping(ctx); err != nil {
			return fmt.Errorf("ping archive: %w", err)
		}
		if startHeight == 0 {
			archived, err := repo.MaxArchivedHeight(ctx)
			if err != nil {
				return fmt.Errorf("read archived height: %w", err)
			}
			if archived > 0 {
				startHeight = archived + 1
				logger.Info("resuming after archived height", zap.Uint64("height", archived))
			}
		}
		sink := archiveCH.NewSink(archiveCH.SinkConfig{}, repo, logger)
		sink.Start(ctx)
		defer sink.Stop()
		archive = sink
	}

	blockSignal, err := startBlockSignal(ctx, cfg.ZMQAddr, logger)
	if err != nil {
		return err
	}

	pipeline, err := ingest.NewPipeline(ingest.Config{
		StartHeight:  startHeight,
		PollInterval: cfg.PollInterval,
	}, source, store, dispatcher, archive, metrics.NewIngest(), logger, blockSignal)
	if err != nil {
		return err
	}

	go func() {
		if err := registry.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("registry sweep loop stopped", zap.Error(err))
		}
	}()
	go func() {
		if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("dispatcher stopped", zap.Error(err))
		}
	}()
	go func() {
		if err := pipeline.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("ingestion stopped", zap.Error(err))
		}
	}()

	api := transport.NewServer(transport.Config{
		MaxWebsocketClients: cfg.MaxWSClients,
	}, engine, registry, dispatcher, store, metrics.NewHTTP(), logger)

	mux := http.NewServeMux()
	mux.Handle("/", api.Handler())
	mux.Handle("/metrics", promhttp.Handler())

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           cors.Default().Handler(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	go func() {
		<-ctx.Done()
		logger.Info("shutting down the http server")
		api.Close()
		if err := s.Shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("starting HTTP server", zap.String("addr", cfg.Addr), zap.String("network", cfg.Network))
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newSource(cfg config) (*bitcoin.Source, func(), error) {
	parsed, err := url.Parse(cfg.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" {
		return nil, nil, fmt.Errorf("rpc url scheme %q not supported, use http", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, nil, errors.New("rpc url missing host")
	}

	node, err := bitcoin.Dial(parsed.Host, cfg.RPCUser, cfg.RPCPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("init rpc client: %w", err)
	}
	closeRPC := func() {
		node.Shutdown()
		node.WaitForShutdown()
	}

	decoder, err := bitcoin.NewScriptDecoder(cfg.Network)
	if err != nil {
		closeRPC()
		return nil, nil, err
	}

	source, err := bitcoin.NewSource(bitcoin.NewRPCClient(node, metrics.NewRPCClient(cfg.Network)), decoder, cfg.Network)
	if err != nil {
		closeRPC()
		return nil, nil, err
	}
	return source, closeRPC, nil
}
