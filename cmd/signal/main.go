package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/config"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/exchange"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/strategy"
	"github.com/joho/godotenv"
)

var (
	configFile = flag.String("config", "", "Path to YAML config file (optional)")
	symbolFlag = flag.String("symbol", "", "Trading symbol (overrides config)")
	strat      = flag.String("strategy", "", "Strategy name (overrides config)")
	interval   = flag.String("interval", "1h", "Candle interval to fetch")
	lookback   = flag.Int("lookback", 72, "Hours of history to fetch")
	watch      = flag.Bool("watch", false, "Stay connected and print live price updates")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.LoadFile(*configFile)
		if err != nil {
			return err
		}
	} else {
		cfg = config.Default()
		cfg.ApplyEnv()
	}
	if *symbolFlag != "" {
		cfg.Symbol = *symbolFlag
	}
	if *strat != "" {
		cfg.Strategy = *strat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := exchange.NewBinanceClient()
	until := time.Now().UTC()
	since := until.Add(-time.Duration(*lookback) * time.Hour)

	log.Printf("📂 Fetching %s %s candles since %s...\n",
		cfg.Symbol, *interval, since.Format(time.RFC3339))
	series, err := client.FetchCandles(ctx, cfg.Symbol, *interval, since, until)
	if err != nil {
		return err
	}
	log.Printf("✓ Fetched %d candles\n", len(series.Candles))

	generator, err := strategy.New(cfg)
	if err != nil {
		return err
	}

	sig := generator.Evaluate(series.Candles, len(series.Candles)-1)
	printSignal(cfg, sig)

	if *watch {
		return watchPrice(ctx, cfg.Symbol)
	}
	return nil
}

func printSignal(cfg *config.Config, sig *strategy.Signal) {
	fmt.Printf("\n📊 %s · %s\n", cfg.Symbol, cfg.Strategy)
	if sig == nil || !sig.Valid {
		reason := "no setup"
		if sig != nil && sig.Reason != "" {
			reason = sig.Reason
		}
		fmt.Printf("   No signal (%s)\n", reason)
		return
	}
	fmt.Printf("   Signal:      %s (%s)\n", sig.Side, sig.Reason)
	fmt.Printf("   Entry:       %s\n", sig.EntryPrice.StringFixed(2))
	fmt.Printf("   Stop loss:   %s\n", sig.StopLoss.StringFixed(2))
	fmt.Printf("   Take profit: %s\n", sig.TakeProfit.StringFixed(2))
}

func watchPrice(ctx context.Context, symbol string) error {
	stream := exchange.NewBinanceStream()
	updates, err := stream.Subscribe(ctx, symbol)
	if err != nil {
		return err
	}

	log.Println("👀 Watching live price (ctrl+c to stop)...")
	for update := range updates {
		fmt.Printf("\r   %s  %s USDT  (%s)",
			update.Symbol, update.Price.StringFixed(2),
			update.Timestamp.Format("15:04:05"))
	}
	fmt.Println()
	return nil
}
