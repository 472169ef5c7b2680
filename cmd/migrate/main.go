package main

import (
	"context"
	"flag"
	"log"

	"github.com/krishanu7/debate-backend/config"
	"github.com/krishanu7/debate-backend/db"
)

func main() {
	down := flag.Bool("down", false, "roll back all migrations")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is not set")
	}

	conn, err := db.Open(context.Background(), cfg.DBUrl)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer conn.Close()

	if *down {
		if err := db.MigrateDown(conn); err != nil {
			log.Fatalf("%v", err)
		}
		log.Println("database migrations rolled back")
		return
	}
	if err := db.MigrateUp(conn); err != nil {
		log.Fatalf("%v", err)
	}
	log.Println("database migrations applied")
}
