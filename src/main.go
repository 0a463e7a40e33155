package main

import (
	"context"
	"log"
	"net/http"

	"homeledger-server/src/api"
	"homeledger-server/src/config"
	"homeledger-server/src/core/ledger"
	"homeledger-server/src/core/session"
	"homeledger-server/src/core/syncer"
	"homeledger-server/src/db"
	"homeledger-server/src/feed/bank"
	"homeledger-server/src/feed/card"
	"homeledger-server/src/feed/feedfake"
	"homeledger-server/src/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	var st store.Store
	var connectors []syncer.Connector

	if cfg.DemoMode {
		log.Println("INFO: Demo mode - using in-memory store with fake feed connectors")
		st = store.NewMemory()
		connectors = []syncer.Connector{feedfake.NewBank(), feedfake.NewCard()}
	} else {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("DB connection failed: %v", err)
		}
		defer pool.Close()
		st = store.NewPostgres(pool)

		plaidClient := bank.NewPlaidClient(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnv)
		connectors = append(connectors, bank.New(plaidClient, "homeledger"))
		if cfg.CardAPIBaseURL != "" {
			connectors = append(connectors, card.New(cfg.CardAPIBaseURL, cfg.CardAPIClientID, cfg.CardAPISecret))
		}
	}

	db.InitCache()

	if err := db.EnsureDefaults(ctx, st, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to seed defaults: %v", err)
	}
	if cfg.DemoMode {
		if err := db.SeedDemo(ctx, st, 3, 25); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	ledgerSvc := ledger.NewService(st, cfg.EnforceBalance)
	sessionSvc := session.NewService(st)
	orchestrator := syncer.New(st, connectors...)

	router := api.NewRouter(st, ledgerSvc, sessionSvc, orchestrator, cfg.DemoMode)

	log.Println("API server running on port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
