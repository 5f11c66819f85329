package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"stockparty/internal/api"
	"stockparty/internal/events"
	"stockparty/internal/game"
	"stockparty/internal/monitor"
	"stockparty/internal/quote"
	"stockparty/pkg/config"
	"stockparty/pkg/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.Printf("starting stockparty: symbol=%s port=%s", cfg.StockSymbol, cfg.Port)
	if cfg.ProxyURL != "" {
		log.Printf("using proxy: %s", cfg.ProxyURL)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core services
	bus := events.NewBus()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}
	defer database.Close()
	if err := db.ApplyMigrations(database); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	state := game.NewState(game.Settings{
		StockName:       cfg.StockName,
		InitialCash:     cfg.InitialCash,
		HistoryDepth:    cfg.HistoryDepth,
		MilestoneStep:   cfg.MilestoneStep,
		RewardThreshold: cfg.RewardThreshold,
		RewardStep:      cfg.RewardStep,
		RewardDebounce:  cfg.RewardDebounce,
	})

	// Seed the chart from the journal so a restart does not blank it.
	if ticks, err := database.RecentTicks(ctx, cfg.StockSymbol, cfg.HistoryDepth); err != nil {
		log.Printf("seed history: %v", err)
	} else if len(ticks) > 0 {
		points := make([]game.PricePoint, 0, len(ticks))
		for _, t := range ticks {
			points = append(points, game.PricePoint{Time: t.At.UnixMilli(), Price: t.Price})
		}
		state.SeedHistory(points)
		log.Printf("seeded %d history samples from journal", len(points))
	}

	var source quote.Source
	if cfg.UseMockQuotes {
		source = quote.NewMock(100, 0.8)
		log.Println("using mock quote source")
	} else {
		source = quote.NewYahoo(cfg.StockSymbol, cfg.ProxyURL)
	}

	metrics := monitor.NewSystemMetrics()

	loop := &game.Loop{
		State:    state,
		Source:   source,
		Bus:      bus,
		Journal:  database,
		Metrics:  metrics,
		Symbol:   cfg.StockSymbol,
		Interval: cfg.UpdateInterval,
	}
	go loop.Run(ctx)

	server := api.NewServer(cfg, bus, database, state, metrics)
	go func() {
		if err := server.Start(":" + cfg.Port); err != nil {
			log.Fatalf("api server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("shutting down")
}
