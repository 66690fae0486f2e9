package main

import (
	"flag"
	"log"
	"os"

	"copyflow-be/internal/model"
	"copyflow-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	dropEvents := flag.Bool("drop-events", false, "drop the stage event log before migrating")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, database.WithLogLevel("info"), database.WithMaxOpenConns(2))
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// gen_random_uuid() defaults need pgcrypto on postgres < 13
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: pgcrypto unavailable: %v", err)
	}

	if *dropEvents {
		if err := db.Migrator().DropTable(&model.WorkflowEvent{}); err != nil {
			log.Fatalf("Error: drop workflow_events: %v", err)
		}
		log.Println("Dropped workflow_events")
	}

	if err := db.AutoMigrate(&model.WorkflowSlot{}, &model.WorkflowEvent{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// GET /events filters by workflow and page and orders by time
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_workflow_events_timeline
		 ON workflow_events (workflow_id, page, occurred_at);`,
		`CREATE INDEX IF NOT EXISTS idx_workflow_slots_durable
		 ON workflow_slots (workflow_id) WHERE scope = 'durable';`,
	}
	for _, sql := range indexes {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: index creation failed: %v", err)
		}
	}

	log.Println("✅ Migration completed: workflow_slots, workflow_events")
}
