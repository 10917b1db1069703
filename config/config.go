package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	DBDriver   string // postgres | mysql | sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	PayMongoAPIURL        string
	PayMongoSecretKey     string
	PayMongoWebhookSecret string
	PayMongoLiveMode      bool
	CheckoutSuccessURL    string
	CheckoutCancelURL     string

	SendGridAPIKey  string
	EmailSender     string
	EmailSenderName string

	SemaphoreAPIURL     string
	SemaphoreAPIKey     string
	SemaphoreSenderName string

	EnableEmail bool
	EnableSMS   bool
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "ewallet"),

		PayMongoAPIURL:        getEnv("PAYMONGO_API_URL", "https://api.paymongo.com/v1"),
		PayMongoSecretKey:     getEnv("PAYMONGO_SECRET_KEY", ""),
		PayMongoWebhookSecret: getEnv("PAYMONGO_WEBHOOK_SECRET", ""),
		PayMongoLiveMode:      getEnvBool("PAYMONGO_LIVE_MODE", false),
		CheckoutSuccessURL:    getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/dashboard?payment=success"),
		CheckoutCancelURL:     getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/cashin?payment=cancelled"),

		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "no-reply@campuspay.local"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "Campus E-Wallet"),

		SemaphoreAPIURL:     getEnv("SEMAPHORE_API_URL", "https://api.semaphore.co/api/v4/messages"),
		SemaphoreAPIKey:     getEnv("SEMAPHORE_API_KEY", ""),
		SemaphoreSenderName: getEnv("SEMAPHORE_SENDER_NAME", "CAMPUSPAY"),

		EnableEmail: getEnvBool("ENABLE_EMAIL", false),
		EnableSMS:   getEnvBool("ENABLE_SMS", false),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.PayMongoWebhookSecret == "" {
		log.Println("Warning: PAYMONGO_WEBHOOK_SECRET is empty. Inbound webhooks will be rejected.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvBool retrieves an environment variable as a boolean or returns the default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}
