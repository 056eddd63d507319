package main

import (
	"context"
	"flag"
	"log"

	"github.com/mveljko/codeclash-api/internal/config"
	"github.com/mveljko/codeclash-api/internal/database"
	"github.com/mveljko/codeclash-api/internal/models"
	"github.com/mveljko/codeclash-api/internal/services"
)

// Promotes a user to the admin role by email. Run once after the first
// sign-in to bootstrap an administrator.
func main() {
	email := flag.String("email", "", "email of the user to promote")
	demote := flag.Bool("demote", false, "demote back to a regular user instead")
	flag.Parse()

	if *email == "" {
		log.Fatal("usage: promote-admin -email user@example.com [-demote]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	userService := services.NewUserService(db)

	user, err := userService.GetByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("User %s not found: %v", *email, err)
	}

	role := models.GlobalRoleAdmin
	if *demote {
		role = models.GlobalRoleUser
	}

	if err := userService.SetGlobalRole(ctx, user.ID, role); err != nil {
		log.Fatalf("Failed to update role: %v", err)
	}

	log.Printf("%s is now %s", user.Email, role)
}
