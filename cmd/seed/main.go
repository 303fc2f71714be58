package main

import (
	"flag"
	"log"
	"os"

	"loan-assist-be/internal/entity"
	"loan-assist-be/internal/model"
	"loan-assist-be/pkg/database"

	"github.com/joho/godotenv"
	"gorm.io/datatypes"
)

func main() {
	bucket := flag.String("bucket", "", "bucket holding the demo documents (defaults to GCS_DEFAULT_BUCKET)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}
	if *bucket == "" {
		*bucket = os.Getenv("GCS_DEFAULT_BUCKET")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding demo loan sessions...")

	for _, s := range demoSessions(*bucket) {
		var existing model.LoanSession
		if err := db.Where("id = ?", s.Id).First(&existing).Error; err == nil {
			log.Printf("Session '%s' already exists, skipping...", s.Id)
			continue
		}

		if err := db.Create(&s).Error; err != nil {
			log.Printf("Error creating session '%s': %v", s.Id, err)
		} else {
			log.Printf("Created session: %s (%s, %d documents)", s.LoanName, s.Id, len(s.Documents))
		}
	}

	log.Println("Loan session seeding completed!")
}

func demoSessions(bucket string) []model.LoanSession {
	doc := func(sessionID, filename, contentType string) model.LoanDocument {
		return model.LoanDocument{
			Filename:    filename,
			Bucket:      bucket,
			ObjectPath:  "loans/" + sessionID + "/" + filename,
			ContentType: contentType,
		}
	}

	return []model.LoanSession{
		{
			Id:          "demo-maple-street",
			UserId:      "demo-user",
			LoanName:    "Maple Street Refinance",
			UserRole:    "Underwriter",
			Institution: "First Harbor Bank",
			AiFocus:     "Cash flow and debt service coverage",
			Language:    "English",
			Region:      "US",
			Status:      entity.LoanSessionStatusActive,
			Documents: datatypes.JSONSlice[model.LoanDocument]{
				doc("demo-maple-street", "application.pdf", "application/pdf"),
				doc("demo-maple-street", "appraisal.pdf", "application/pdf"),
				doc("demo-maple-street", "credit_memo.txt", "text/plain"),
			},
			Conversations: datatypes.JSONSlice[model.ConversationTurn]{},
		},
		{
			Id:          "demo-harbor-warehouse",
			UserId:      "demo-user",
			LoanName:    "Harbor Warehouse Acquisition",
			UserRole:    "Credit Analyst",
			Institution: "First Harbor Bank",
			Language:    "English",
			Region:      "US",
			Status:      entity.LoanSessionStatusActive,
			Documents: datatypes.JSONSlice[model.LoanDocument]{
				doc("demo-harbor-warehouse", "rent_roll.csv", "text/csv"),
			},
			Conversations: datatypes.JSONSlice[model.ConversationTurn]{},
		},
	}
}
