// Seed creates the development test user so a fresh database can be logged
// into right away. Safe to run repeatedly: an existing user is left alone.
package main

import (
	"context"
	"errors"
	"log"

	"github.com/akarpov87/authkeeper/internal/common"
	"github.com/akarpov87/authkeeper/internal/server/config"
	"github.com/akarpov87/authkeeper/internal/server/models"
	"github.com/akarpov87/authkeeper/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const (
	seedEmail    = "test@example.com"
	seedPassword = "password123"
	seedName     = "Test User"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	m, db, err := repomanager.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	repo := m.Users(db)

	if _, err := repo.FindByEmail(ctx, seedEmail); err == nil {
		log.Println("Test user already exists")
		return
	} else if !errors.Is(err, common.ErrorNotFound) {
		log.Fatalf("lookup error: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash error: %v", err)
	}

	user := &models.User{
		Email:        seedEmail,
		Name:         seedName,
		PasswordHash: string(hash),
	}

	if _, err := repo.Create(ctx, user); err != nil {
		log.Fatalf("create error: %v", err)
	}

	log.Println("Test user created successfully!")
	log.Printf("Email: %s", seedEmail)
	log.Printf("Password: %s", seedPassword)
}
