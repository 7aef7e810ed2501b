// Command seed populates the development database with demo data.
package main

import (
	"flag"
	"log"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/seed"
)

func main() {
	users := flag.Int("users", 0, "number of users to create (0 = default preset)")
	posts := flag.Int("posts", 0, "number of posts to create (0 = default preset)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.DefaultOptions()
	if *users > 0 {
		opts.Users = *users
	}
	if *posts > 0 {
		opts.Posts = *posts
	}

	if err := seed.NewFactory(db, opts).Run(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d users, %d groups, %d posts", opts.Users, opts.Groups, opts.Posts)
}
