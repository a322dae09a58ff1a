package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"streamoverlay/internal/adapter/repo"
	"streamoverlay/internal/infra"
	"streamoverlay/internal/sqlinline"
)

func main() {
	_ = godotenv.Load()

	var (
		dbURLFlag string
		printFlag bool
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "Postgres connection string (fallbacks to DATABASE_URL)")
	flag.BoolVar(&printFlag, "print", false, "print the schema statements instead of applying them")
	flag.Parse()

	if printFlag {
		for _, stmt := range sqlinline.OverlaySchema {
			fmt.Println(strings.TrimSpace(stmt))
			fmt.Println()
		}
		return
	}

	dbURL := strings.TrimSpace(dbURLFlag)
	if dbURL == "" {
		dbURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required via -database-url or environment"))
	}

	logger := infra.NewLogger("cli", "migrate")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, &infra.Config{DatabaseURL: dbURL})
	if err != nil {
		exitWithError(err)
	}
	store := repo.NewOverlayRepositoryPG(infra.NewSQLRunner(pool, logger), pool.Close)
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		exitWithError(err)
	}
	fmt.Printf("applied %d overlay schema statements\n", len(sqlinline.OverlaySchema))
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
	os.Exit(1)
}
