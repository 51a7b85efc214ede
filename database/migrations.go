package database

import (
	"log"

	"golang.org/x/crypto/bcrypt"
)

// RunMigrations runs all database migrations
func RunMigrations() error {
	log.Println("Running database migrations...")

	// AutoMigrate will create tables if they don't exist
	if err := DB.AutoMigrate(
		&Employee{},
		&Client{},
		&Lead{},
		&Project{},
		&Task{},
		&Invoice{},
		&Transaction{},
		&Role{},
		&Permission{},
		&Notification{},
		&AuditLog{},
		&ScheduledNotification{},
	); err != nil {
		log.Printf("Migration failed: %v", err)
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaultAdmin creates a default admin if none exists
func SeedDefaultAdmin() {
	var count int64
	if err := DB.Model(&Employee{}).Where("role = ?", RoleAdmin).Count(&count).Error; err != nil {
		log.Printf("Failed to check existing admin: %v", err)
		return
	}

	if count == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Failed to hash default admin password: %v", err)
			return
		}

		admin := Employee{
			Name:         "Administrador",
			Email:        "admin@gestionempresa.com",
			PasswordHash: string(hash),
			Role:         RoleAdmin,
			Position:     "Administrador del sistema",
			IsActive:     true,
		}

		if err := DB.Create(&admin).Error; err != nil {
			log.Printf("Failed to create admin: %v", err)
		} else {
			log.Println("Default admin user created successfully")
		}
	}
}
