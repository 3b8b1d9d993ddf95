package main

import (
	"fmt"
	"log"

	"golang-wa-broadcast/internal/adapters/db/postgres"
	"golang-wa-broadcast/internal/config"
)

func main() {
	conf := config.Load()

	fmt.Println("🔗 Connecting to database...")

	repo, err := postgres.New(conf.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect: %v", err)
	}
	defer repo.Close()

	fmt.Println("✅ Connected to database")
	fmt.Println("🔄 Running migrations...")

	if err := repo.Migrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	fmt.Println("✅ Migration complete!")
	fmt.Println("🎉 Table deliveries ready!")
}
