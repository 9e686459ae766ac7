package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/alexivanou/weatherscore/internal/config"
	"github.com/alexivanou/weatherscore/internal/logging"
	"github.com/alexivanou/weatherscore/internal/weather"
	"go.uber.org/zap"
)

func main() {
	city := flag.String("city", "", "City to look up (the remaining arguments are used when empty)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, true)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	name := *city
	if name == "" {
		name = strings.Join(flag.Args(), " ")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := weather.NewClientFromConfig(cfg.Weather, logger)

	res := <-client.FetchAsync(ctx, name)
	if res.Err != nil {
		var te *weather.TransportError
		switch {
		case errors.Is(res.Err, weather.ErrInvalidInput):
			fmt.Fprintln(os.Stderr, "usage: weather -city <name>")
		case errors.Is(res.Err, weather.ErrMissingCredential):
			fmt.Fprintln(os.Stderr, "OPENWEATHER_API_KEY is not set")
		case errors.As(res.Err, &te) && te.StatusCode == 404:
			fmt.Fprintf(os.Stderr, "city %q not found\n", name)
		default:
			logger.Error("Weather lookup failed", zap.Error(res.Err))
		}
		os.Exit(1)
	}

	rec := res.Record
	if !rec.IsValid() {
		logger.Warn("Incomplete weather data", zap.String("city", name))
	}
	fmt.Printf("%s: %.1f%s, %s\n", rec.City, rec.TemperatureCelsius, unitSymbol(cfg.Weather.Units), rec.Description)
}

func unitSymbol(units string) string {
	switch units {
	case "imperial":
		return "°F"
	case "standard":
		return " K"
	default:
		return "°C"
	}
}
