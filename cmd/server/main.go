package main

import (
	"flag"
	"log"
	"os"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/api"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/config"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/exchange"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	configFile   = flag.String("config", "", "Path to YAML config file (optional)")
	addr         = flag.String("addr", "", "Listen address (default :8080, or API_PORT env)")
	disableFetch = flag.Bool("no-fetch", false, "Disable exchange data fetching")
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
	if err := cfg.Validate(); err != nil {
		return err
	}

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var fetcher exchange.Fetcher
	if !*disableFetch {
		fetcher = exchange.NewBinanceClient()
	}

	listen := *addr
	if listen == "" {
		if port := os.Getenv("API_PORT"); port != "" {
			listen = ":" + port
		} else {
			listen = ":8080"
		}
	}

	router := api.NewRouter(cfg, fetcher)
	log.Printf("🚀 Backtest API listening on %s\n", listen)
	return router.Run(listen)
}
