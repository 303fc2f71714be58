package main

import (
	"log"
	"os"

	"loan-assist-be/internal/model"
	"loan-assist-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: AutoMigrate loan_sessions...")
	if err := database.Migrate(db, &model.LoanSession{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 2: Creating indexes and triggers...")

	postMigrationSQL := []string{
		`CREATE OR REPLACE FUNCTION set_current_timestamp_updated_at() RETURNS trigger LANGUAGE plpgsql AS $$
		DECLARE _new_value TIMESTAMP WITH TIME ZONE;
		BEGIN
		  _new_value := now();
		  IF NEW.updated_at IS DISTINCT FROM _new_value THEN NEW.updated_at = _new_value; END IF;
		  RETURN NEW;
		END; $$;`,

		`DROP TRIGGER IF EXISTS set_loan_sessions_updated_at ON loan_sessions;`,
		`CREATE TRIGGER set_loan_sessions_updated_at BEFORE UPDATE ON loan_sessions
		 FOR EACH ROW EXECUTE FUNCTION set_current_timestamp_updated_at();`,

		// Dashboards list a reviewer's open sessions newest first.
		`CREATE INDEX IF NOT EXISTS idx_loan_sessions_user_status_created
		 ON loan_sessions (user_id, status, created_at DESC);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Success: loan_sessions migration completed.")
}
