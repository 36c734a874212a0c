package main

import (
	"bufio"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	redis "github.com/go-redis/redis/v8"
	"github.com/urfave/cli/v2"

	"github.com/cryptopal/assistant/internal/api"
	"github.com/cryptopal/assistant/internal/chat"
	"github.com/cryptopal/assistant/internal/coins"
	"github.com/cryptopal/assistant/internal/config"
	"github.com/cryptopal/assistant/internal/database"
	"github.com/cryptopal/assistant/internal/domain"
	"github.com/cryptopal/assistant/internal/export"
	"github.com/cryptopal/assistant/internal/intent"
	"github.com/cryptopal/assistant/internal/market"
	"github.com/cryptopal/assistant/internal/portfolio"
	"github.com/cryptopal/assistant/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// app bundles the wired components shared by all commands.
type app struct {
	cfg      config.Config
	dir      *coins.Directory
	source   market.Source
	ledger   *portfolio.Ledger
	orch     *chat.Orchestrator
	shutdown func()
}

func main() {
	cliApp := &cli.App{
		Name:  "cryptopal",
		Usage: "conversational crypto assistant",
		Commands: []*cli.Command{
			{
				Name:   "chat",
				Usage:  "interactive chat session",
				Action: runChat,
			},
			{
				Name:      "ask",
				Usage:     "answer a single utterance and exit",
				ArgsUsage: "<utterance>",
				Action:    runAsk,
			},
			{
				Name:      "price",
				Usage:     "show the current price for a coin",
				ArgsUsage: "<coin>",
				Action:    runPrice,
			},
			{
				Name:      "chart",
				Usage:     "fetch a price history series for a coin",
				ArgsUsage: "<coin>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "timeframe",
						Value: "7d",
						Usage: "series span: 1d, 3d, 7d, 30d or 1y",
					},
				},
				Action: runChart,
			},
			{
				Name:   "trending",
				Usage:  "show trending coins",
				Action: runTrending,
			},
			{
				Name:   "portfolio",
				Usage:  "show portfolio holdings and total value",
				Action: runPortfolio,
			},
			{
				Name:  "export",
				Usage: "write portfolio holdings to an XLSX file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Value: "portfolio.xlsx",
						Usage: "output file path",
					},
				},
				Action: runExport,
			},
			{
				Name:   "serve",
				Usage:  "run the HTTP API with a background reprice worker",
				Action: runServe,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// bootstrap wires configuration, market source, storage and the orchestrator.
func bootstrap(ctx context.Context) (*app, error) {
	cfg := config.Load()
	dir := coins.NewDirectory()

	var source market.Source
	switch cfg.MarketProvider {
	case "coinpaprika":
		source = market.NewCoinPaprika(cfg.CoinPaprikaURL, cfg.HTTPTimeout)
	case "coingecko":
		source = market.NewCoinGecko(cfg.CoinGeckoURL, cfg.HTTPTimeout)
	default:
		return nil, fmt.Errorf("unknown MARKET_PROVIDER %q", cfg.MarketProvider)
	}
	source = market.WithSpotCache(source)

	store, shutdown, err := newSnapshotStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ledger := portfolio.NewLedger(dir, source, store)
	if err := ledger.Load(ctx); err != nil {
		shutdown()
		return nil, fmt.Errorf("loading portfolio: %w", err)
	}

	orch := chat.NewOrchestrator(dir, intent.NewInterpreter(dir), source, ledger, nil)

	return &app{
		cfg:      cfg,
		dir:      dir,
		source:   source,
		ledger:   ledger,
		orch:     orch,
		shutdown: shutdown,
	}, nil
}

// newSnapshotStore builds the persistence backend named by STORAGE_BACKEND.
func newSnapshotStore(ctx context.Context, cfg config.Config) (portfolio.SnapshotStore, func(), error) {
	switch cfg.StorageBackend {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		migrations, err := fs.Sub(migrationsFS, "migrations")
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("creating migrations sub-fs: %w", err)
		}
		if err := database.Migrate(ctx, pool, migrations); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return portfolio.NewPgSnapshotStore(pool), pool.Close, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("pinging redis: %w", err)
		}
		return portfolio.NewRedisSnapshotStore(client), func() { _ = client.Close() }, nil

	case "file":
		return portfolio.NewFileSnapshotStore(cfg.SnapshotDir), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

func runChat(c *cli.Context) error {
	a, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer a.shutdown()

	fmt.Println(chat.Greeting)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			break
		}

		reply := a.orch.HandleUtterance(c.Context, text)
		fmt.Println(reply.Text)
		if reply.Chart != nil {
			fmt.Printf("(chart: %s, %d points)\n", reply.Chart.Coin.Name, len(reply.Chart.Series))
		}
		fmt.Println()
	}
	return scanner.Err()
}

func runAsk(c *cli.Context) error {
	utterance := strings.Join(c.Args().Slice(), " ")
	if utterance == "" {
		return fmt.Errorf("usage: cryptopal ask <utterance>")
	}
	return answer(c.Context, utterance)
}

func runPrice(c *cli.Context) error {
	coin := strings.Join(c.Args().Slice(), " ")
	if coin == "" {
		return fmt.Errorf("usage: cryptopal price <coin>")
	}
	return answer(c.Context, "price of "+coin)
}

func runChart(c *cli.Context) error {
	token := strings.Join(c.Args().Slice(), " ")
	if token == "" {
		return fmt.Errorf("usage: cryptopal chart <coin>")
	}
	tf, err := domain.ParseTimeframe(c.String("timeframe"))
	if err != nil {
		return err
	}

	a, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer a.shutdown()

	coin := a.dir.Resolve(token)
	if coin == nil {
		return fmt.Errorf("unknown coin %q", token)
	}

	series, err := a.source.History(c.Context, *coin, tf)
	if err != nil {
		return err
	}

	first, last := series[0], series[len(series)-1]
	fmt.Printf("%s (%s), last %s: %d points\n", coin.Name, coin.Symbol, tf, len(series))
	fmt.Printf("open  $%.2f  (%s)\n", first.Price, time.UnixMilli(first.Timestamp).UTC().Format("2006-01-02 15:04"))
	fmt.Printf("close $%.2f  (%s)\n", last.Price, time.UnixMilli(last.Timestamp).UTC().Format("2006-01-02 15:04"))
	return nil
}

func runTrending(c *cli.Context) error {
	return answer(c.Context, "show me trending coins")
}

func runPortfolio(c *cli.Context) error {
	return answer(c.Context, "show my portfolio")
}

// answer routes a single utterance through the orchestrator and prints the reply.
func answer(ctx context.Context, utterance string) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.shutdown()

	reply := a.orch.HandleUtterance(ctx, utterance)
	fmt.Println(reply.Text)
	return nil
}

func runExport(c *cli.Context) error {
	a, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer a.shutdown()

	total := a.ledger.TotalValue(c.Context)
	path := c.String("out")
	if err := export.WriteXLSX(a.ledger.Holdings(), total, path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runServe(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.shutdown()

	repriceWorker := worker.NewRepriceWorker(a.ledger, a.cfg.RepriceInterval)
	go repriceWorker.Run(ctx)

	srv := api.NewServer(a.cfg.HTTPPort, a.orch, a.ledger)

	go func() {
		slog.Info("HTTP server listening", "port", a.cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	return nil
}
