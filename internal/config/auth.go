package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads JWT_SECRET (required) and JWT_EXPIRATION_HOURS (default: 24).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	expirationHours, err := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
	}

	cfg := &JWTConfig{
		Secret:          secret,
		ExpirationHours: expirationHours,
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}

// PasswordConfig holds configuration for password hashing and verification.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string // optional global secret appended before hashing
}

// NewPasswordConfig creates a new password configuration from environment variables.
// It reads BCRYPT_COST (default: 12) and optionally PASSWORD_PEPPER.
func NewPasswordConfig() (*PasswordConfig, error) {
	cost, err := strconv.Atoi(getEnv("BCRYPT_COST", "12"))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	cfg := &PasswordConfig{
		BcryptCost: cost,
		Pepper:     os.Getenv("PASSWORD_PEPPER"),
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *PasswordConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return nil
}

// HashPassword hashes a password using bcrypt (with optional pepper).
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw+c.Pepper), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a stored hash (with optional pepper).
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pw+c.Pepper)) == nil
}

// AuthConfig combines token and password settings with the single operator account allowed
// to download documents.
type AuthConfig struct {
	JWT               *JWTConfig
	Password          *PasswordConfig
	AdminUsername     string
	AdminPasswordHash string
}

// NewAuthConfig reads JWT, password and operator settings from the environment.
// ADMIN_USERNAME defaults to "admin". ADMIN_PASSWORD_HASH is used as is; otherwise
// ADMIN_PASSWORD is hashed once at startup. One of the two is required.
func NewAuthConfig() (*AuthConfig, error) {
	jwtCfg, err := NewJWTConfig()
	if err != nil {
		return nil, err
	}
	pwCfg, err := NewPasswordConfig()
	if err != nil {
		return nil, err
	}

	cfg := &AuthConfig{
		JWT:               jwtCfg,
		Password:          pwCfg,
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
	}
	if cfg.AdminPasswordHash == "" {
		plain := os.Getenv("ADMIN_PASSWORD")
		if plain == "" {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH or ADMIN_PASSWORD is required but not set")
		}
		hash, err := pwCfg.HashPassword(plain)
		if err != nil {
			return nil, err
		}
		cfg.AdminPasswordHash = hash
	}
	return cfg, nil
}

// CheckCredentials reports whether username and password match the operator account.
func (c *AuthConfig) CheckCredentials(username, password string) bool {
	if username != c.AdminUsername {
		// unknown usernames take as long as wrong passwords
		c.Password.VerifyPassword(password, c.AdminPasswordHash)
		return false
	}
	return c.Password.VerifyPassword(password, c.AdminPasswordHash)
}
