/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/treasureakintoye/ambradio-dashboard/internal/db"
	"github.com/treasureakintoye/ambradio-dashboard/internal/models"
)

var (
	userEmail    string
	userPassword string
	userRole     string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage dashboard user accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a dashboard user",
	Long: `Create a dashboard user account.

Examples:
  # Bootstrap the first admin
  ambradio user add --email admin@example.com --password changeme --role admin

  # Add an operator
  ambradio user add --email ops@example.com --password s3cret --role operator
`,
	RunE: runUserAdd,
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Reset a user's password",
	RunE:  runUserPasswd,
}

func init() {
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "Email address (required)")
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "Password (required)")
	userAddCmd.Flags().StringVar(&userRole, "role", "admin", "Role: admin, operator, or streamer")

	userPasswdCmd.Flags().StringVar(&userEmail, "email", "", "Email address (required)")
	userPasswdCmd.Flags().StringVar(&userPassword, "password", "", "New password (required)")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userPasswdCmd)
	rootCmd.AddCommand(userCmd)
}

func parseRole(raw string) (models.RoleName, error) {
	switch models.RoleName(strings.ToLower(raw)) {
	case models.RoleAdmin:
		return models.RoleAdmin, nil
	case models.RoleOperator:
		return models.RoleOperator, nil
	case models.RoleStreamer:
		return models.RoleStreamer, nil
	default:
		return "", fmt.Errorf("unknown role %q (want admin, operator, or streamer)", raw)
	}
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	if userEmail == "" || userPassword == "" {
		return errors.New("--email and --password are required")
	}
	role, err := parseRole(userRole)
	if err != nil {
		return err
	}

	if err := loadConfig(); err != nil {
		return err
	}
	database, err := initDatabase()
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() { _ = db.Close(database) }()
	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(userPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:       uuid.NewString(),
		Email:    userEmail,
		Password: string(hash),
		Role:     role,
	}
	if err := database.Create(&user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	logger.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Str("role", string(user.Role)).
		Msg("user created")
	fmt.Printf("Created %s user %s\n", user.Role, user.Email)
	return nil
}

func runUserPasswd(cmd *cobra.Command, args []string) error {
	if userEmail == "" || userPassword == "" {
		return errors.New("--email and --password are required")
	}

	if err := loadConfig(); err != nil {
		return err
	}
	database, err := initDatabase()
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() { _ = db.Close(database) }()

	var user models.User
	if err := database.Where("email = ?", userEmail).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no user with email %s", userEmail)
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(userPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hash)
	if err := database.Save(&user).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	fmt.Printf("Password updated for %s\n", user.Email)
	return nil
}
