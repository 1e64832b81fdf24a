package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	MercadoPago MercadoPagoConfig
	CORS        CORSConfig
	Admin       AdminConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

// RedisConfig configures the optional rate limiter backing store.
// An empty Addr disables rate limiting entirely.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry int // in minutes
}

// MercadoPagoConfig holds the provider credentials. AccessToken is used for
// server-side API calls; PublicKey is handed to the client-side card widget.
type MercadoPagoConfig struct {
	AccessToken string
	PublicKey   string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// AdminConfig seeds the initial admin account on startup. Leaving Email
// empty skips seeding.
type AdminConfig struct {
	Email    string
	Password string
}

func Load() *Config {
	// .env for local development; real deployments set the environment directly.
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_DATABASE", "drop_store")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("JWT_ACCESS_EXPIRY", 60)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	if viper.GetString("MP_ACCESS_TOKEN") == "" {
		log.Printf("Warning: MP_ACCESS_TOKEN is not set; checkout endpoints will fail")
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: viper.GetInt("JWT_ACCESS_EXPIRY"),
		},
		MercadoPago: MercadoPagoConfig{
			AccessToken: viper.GetString("MP_ACCESS_TOKEN"),
			PublicKey:   viper.GetString("MP_PUBLIC_KEY"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
		},
		Admin: AdminConfig{
			Email:    viper.GetString("ADMIN_EMAIL"),
			Password: viper.GetString("ADMIN_PASSWORD"),
		},
	}
}
