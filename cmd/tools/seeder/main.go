// Command seeder loads inventory capacity pools and discount codes into
// Redis from JSON files. Pools not listed keep their current value; a
// capacity of -1 marks the pool unlimited.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-tour/internal/discount"
	"github.com/noah-isme/backend-tour/internal/inventory"
)

type pool struct {
	Kind          string `json:"kind"`
	TripID        string `json:"tripId,omitempty"`
	BoatID        string `json:"boatId,omitempty"`
	TicketType    string `json:"ticketType,omitempty"`
	MerchandiseID string `json:"merchandiseId,omitempty"`
	Variant       string `json:"variant,omitempty"`
	Capacity      int64  `json:"capacity"`
}

func (p pool) key() inventory.Key {
	if p.Kind == "merchandise" {
		return inventory.MerchandiseKey(p.MerchandiseID, p.Variant)
	}
	return inventory.TicketKey(p.TripID, p.BoatID, p.TicketType)
}

func main() {
	file := flag.String("file", "pools.json", "path to the pool definitions file")
	discountFile := flag.String("discounts", "", "optional path to a discount code definitions file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		log.Fatal("REDIS_URL is not set")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}
	var pools []pool
	if err := json.Unmarshal(raw, &pools); err != nil {
		log.Fatalf("parse %s: %v", *file, err)
	}

	ctx := context.Background()
	store := inventory.NewRedisStore(client)
	for _, p := range pools {
		if err := store.Seed(ctx, p.key(), p.Capacity); err != nil {
			log.Fatalf("seed %s: %v", p.key(), err)
		}
		log.Printf("seeded %s capacity=%d", p.key(), p.Capacity)
	}
	log.Printf("seeded %d pools", len(pools))

	if *discountFile == "" {
		return
	}
	raw, err = os.ReadFile(*discountFile)
	if err != nil {
		log.Fatalf("read %s: %v", *discountFile, err)
	}
	var codes []discount.Code
	if err := json.Unmarshal(raw, &codes); err != nil {
		log.Fatalf("parse %s: %v", *discountFile, err)
	}
	discounts := discount.NewRedisStore(client)
	for _, code := range codes {
		if err := discounts.Seed(ctx, code); err != nil {
			log.Fatalf("seed discount %s: %v", code.Code, err)
		}
		log.Printf("seeded discount %s", code.Code)
	}
	log.Printf("seeded %d discount codes", len(codes))
}
