// Command main runs the database seeder for the Where It Hurts API.
package main

import (
	"flag"
	"log"

	"github.com/gavinschriver/whereithurts-server/internal/config"
	"github.com/gavinschriver/whereithurts-server/internal/database"
	"github.com/gavinschriver/whereithurts-server/internal/seed"
)

func main() {
	// Parse command line flags
	numPatients := flag.Int("patients", 20, "Number of patients to create")
	hurtsPerUser := flag.Int("hurts", 3, "Number of hurts per patient")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d patients, %d hurts each, clean=%v\n", *numPatients, *hurtsPerUser, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if _, err = database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(database.DB)
	if err := s.Run(seed.Options{
		NumPatients:  *numPatients,
		HurtsPerUser: *hurtsPerUser,
		ShouldClean:  *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
}
