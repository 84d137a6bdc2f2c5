// Command main runs the database seeder for Haven.
package main

import (
	"flag"
	"log"

	"haven/internal/config"
	"haven/internal/database"
	"haven/internal/seed"
)

func main() {
	// Parse command line flags
	numPosts := flag.Int("posts", 12, "Number of posts to create")
	maxComments := flag.Int("comments", 6, "Maximum comments per published post")
	numSubscribers := flag.Int("subscribers", 25, "Number of newsletter subscribers to create")
	shouldClean := flag.Bool("clean", true, "Clean existing content before seeding")
	drafts := flag.Bool("drafts", true, "Leave a couple of posts in draft status")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d posts, %d subscribers, clean=%v\n", *numPosts, *numSubscribers, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumPosts:       *numPosts,
		MaxCommentsPer: *maxComments,
		NumSubscribers: *numSubscribers,
		ShouldClean:    *shouldClean,
		IncludeDrafts:  *drafts,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with demo content.")
}
