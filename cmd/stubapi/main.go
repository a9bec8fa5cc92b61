// Package main runs the local stub API server.
package main

import (
	"log"

	"skillsync/config"
	"skillsync/stubserver"
)

func main() {
	cfg := config.LoadConfig()

	srv := stubserver.New(cfg.JWTSecret)
	users, _, err := srv.Seed(5)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}
	log.Printf("Seeded %d users (password: password123)", len(users))
	for _, u := range users {
		log.Printf("  %s <%s>", u.Username, u.Email)
	}

	log.Printf("Stub API listening on :%s", cfg.StubPort)
	if err := srv.Listen(cfg.StubPort); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
