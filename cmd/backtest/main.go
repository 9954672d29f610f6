package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/config"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/engine"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/metrics"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/report"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/tui"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

var (
	configFile = flag.String("config", "", "Path to YAML config file (optional)")
	dataFile   = flag.String("data", "", "Path to CSV file with historical candles")
	symbol     = flag.String("symbol", "", "Trading symbol (overrides config)")
	strategy   = flag.String("strategy", "", "Strategy: orb, multifactor, mean_reversion, trend_following, breakout_fade")
	riskUSDT   = flag.Float64("risk", 0, "Risk per trade in USDT (overrides config)")
	fullDay    = flag.Bool("full-day", false, "Trade the full 24h session instead of windowed hours")
	inverted   = flag.Bool("inverted", false, "Report the strategy as if every signal had been mirrored")

	// Sample data generation
	generateSample = flag.Bool("generate-sample", false, "Generate sample data instead of loading from file")
	sampleCandles  = flag.Int("sample-candles", 24*30, "Number of hourly candles to generate")
	samplePrice    = flag.Float64("sample-price", 50000, "Base price for sample data")

	// Output options
	verbose    = flag.Bool("verbose", false, "Show each trade as it closes")
	tradesCSV  = flag.String("trades-csv", "", "Write the trade log to this CSV file")
	resultJSON = flag.String("results-json", "", "Write the full results document to this JSON file")
	dashboard  = flag.Bool("tui", false, "Open the interactive results dashboard")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	series, err := loadData(cfg)
	if err != nil {
		return err
	}

	start := series.Candles[0].Timestamp
	end := series.Candles[len(series.Candles)-1].Timestamp
	log.Printf("📅 Period: %s to %s (%d candles)\n",
		start.Format("2006-01-02"), end.Format("2006-01-02"), len(series.Candles))
	log.Printf("⚙️  Strategy: %s · risk %s USDT · tz %s\n",
		cfg.Strategy, cfg.RiskUSDT.StringFixed(0), cfg.Timezone)

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}

	if *verbose {
		count := 0
		eng.SetOnTrade(func(t *engine.TradeRecord) {
			count++
			mark := "✓"
			if t.PnLUSDT.IsNegative() {
				mark = "✗"
			}
			log.Printf("[Trade #%d] %s %s %s: %s → %s = %s USDT (%.2fR) [%s]\n",
				count, mark, t.DayKey, t.Side,
				t.EntryPrice.StringFixed(2), t.ExitPrice.StringFixed(2),
				t.PnLUSDT.StringFixed(2), t.RMultiple.InexactFloat64(), t.ExitReason)
		})
	}

	log.Println("🚀 Running backtest...")
	startRun := time.Now()

	result, err := eng.Run(series)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	log.Printf("✓ Completed in %s\n", time.Since(startRun).Round(time.Millisecond))

	if *inverted {
		result = report.InvertResult(result)
		log.Println("🔄 Results shown with every signal mirrored")
	}

	summary := metrics.Compute(result.Trades)
	validation := metrics.Validate(summary, cfg.Thresholds)

	reporter := report.NewReporter()
	fmt.Println(reporter.GenerateReport(result, summary, validation))

	if *tradesCSV != "" {
		if err := report.WriteTradesCSV(*tradesCSV, result.Trades); err != nil {
			return err
		}
		log.Printf("💾 Trade log written to %s\n", *tradesCSV)
	}
	if *resultJSON != "" {
		if err := report.WriteResultsJSON(*resultJSON, result, summary, validation); err != nil {
			return err
		}
		log.Printf("💾 Results written to %s\n", *resultJSON)
	}

	if *dashboard {
		return tui.Run(result, summary, validation, cfg.Strategy)
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.LoadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg = config.Default()
		cfg.ApplyEnv()
	}

	if *symbol != "" {
		cfg.Symbol = *symbol
	}
	if *strategy != "" {
		cfg.Strategy = *strategy
	}
	if *riskUSDT > 0 {
		cfg.RiskUSDT = decimal.NewFromFloat(*riskUSDT)
	}
	if *fullDay {
		cfg.FullDayTrading = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadData(cfg *config.Config) (*market.Series, error) {
	if *generateSample {
		log.Println("📊 Generating sample data...")
		start := time.Now().UTC().Add(-time.Duration(*sampleCandles) * time.Hour).Truncate(time.Hour)
		series := market.GenerateSample(cfg.Symbol, start, *sampleCandles, *samplePrice, time.Hour)
		log.Printf("✓ Generated %d candles\n", len(series.Candles))
		return series, nil
	}

	if *dataFile == "" {
		return nil, fmt.Errorf("either -data or -generate-sample is required")
	}

	log.Printf("📂 Loading data from %s...\n", *dataFile)
	loader := market.NewLoader()
	series, err := loader.LoadCSV(*dataFile, cfg.Symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	log.Printf("✓ Loaded %d candles\n", len(series.Candles))
	return series, nil
}
