package main

// Run database migrations:
//   go run ./cmd/migrate          # apply pending migrations
//   go run ./cmd/migrate status   # print applied vs. latest version

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/config"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	err = run(ctx, cmd, sqlDB)
	_ = sqlDB.Close()
	if err != nil {
		log.Fatalf("migrate %s: %v", cmd, err)
	}
}

func run(ctx context.Context, cmd string, sqlDB *sql.DB) error {
	switch cmd {
	case "up":
		return db.RunMigrations(ctx, sqlDB)
	case "status":
		st, err := db.MigrationStatus(ctx, sqlDB)
		if err != nil {
			return err
		}
		fmt.Printf("applied=%d latest=%d pending=%t\n", st.Applied, st.Latest, st.Pending())
		return nil
	default:
		return fmt.Errorf("unknown command %q (want up or status)", cmd)
	}
}
