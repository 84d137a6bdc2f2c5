// Package main provides admin account management utilities for Haven.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"haven/internal/config"
	"haven/internal/database"
	"haven/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin create <username> <email> <password>  - Create an admin account")
		fmt.Println("  go run ./cmd/admin passwd <username> <password>          - Reset an admin password")
		fmt.Println("  go run ./cmd/admin list                                  - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch os.Args[1] {
	case "create":
		if len(os.Args) < 5 {
			fmt.Println("Usage: go run ./cmd/admin create <username> <email> <password>")
			os.Exit(1)
		}
		createAdmin(db, os.Args[2], os.Args[3], os.Args[4])

	case "passwd":
		if len(os.Args) < 4 {
			fmt.Println("Usage: go run ./cmd/admin passwd <username> <password>")
			os.Exit(1)
		}
		resetPassword(db, os.Args[2], os.Args[3])

	case "list":
		listAdmins(db)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func createAdmin(db *gorm.DB, username, email, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin := models.Admin{
		Username: strings.TrimSpace(username),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: string(hash),
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	fmt.Printf("✅ Created admin %q (ID %d)\n", admin.Username, admin.ID)
}

func resetPassword(db *gorm.DB, username, password string) {
	var admin models.Admin
	err := db.Where("username = ?", username).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("No admin named %q", username)
	}
	if err != nil {
		log.Fatalf("Failed to look up admin: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	if err := db.Model(&admin).Update("password", string(hash)).Error; err != nil {
		log.Fatalf("Failed to update password: %v", err)
	}
	fmt.Printf("✅ Password updated for %q\n", admin.Username)
}

func listAdmins(db *gorm.DB) {
	var admins []models.Admin
	if err := db.Order("id ASC").Find(&admins).Error; err != nil {
		log.Fatalf("Failed to list admins: %v", err)
	}
	if len(admins) == 0 {
		fmt.Println("No admin accounts found.")
		return
	}
	for _, a := range admins {
		fmt.Printf("  %d  %s  <%s>\n", a.ID, a.Username, a.Email)
	}
}
