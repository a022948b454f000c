// config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds every secret and knob the service needs. It is loaded once in main
// and passed into the services that need it — handlers never read the environment.
type Config struct {
	Port           string
	DatabaseURL    string
	AllowedOrigins string

	// Public site the payment provider redirects back to.
	SiteURL string

	// Shared bearer token for the admin dashboard API.
	AdminToken string

	StripeSecretKey     string
	StripeWebhookSecret string

	SESAccessKeyID     string
	SESSecretAccessKey string
	SESRegion          string
	EmailSender        string
	ContactInbox       string

	CloudflareAccountID string
	R2AccessKeyID       string
	R2AccessKeySecret   string
	R2Bucket            string
	CDNBaseURL          string
}

// Load reads the full configuration from the environment. Missing required keys are
// collected and reported together so a misconfigured deploy fails once, with the
// whole list, instead of dying one variable at a time.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getenvDefault("PORT", "8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		AllowedOrigins:      getenvDefault("ALLOWED_ORIGINS", "*"),
		SiteURL:             strings.TrimRight(os.Getenv("PUBLIC_SITE_URL"), "/"),
		AdminToken:          os.Getenv("ADMIN_API_TOKEN"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		SESAccessKeyID:      os.Getenv("SES_ACCESS_KEY_ID"),
		SESSecretAccessKey:  os.Getenv("SES_SECRET_ACCESS_KEY"),
		SESRegion:           getenvDefault("SES_REGION", "us-east-1"),
		EmailSender:         os.Getenv("EMAIL_SENDER"),
		ContactInbox:        os.Getenv("CONTACT_INBOX"),
		CloudflareAccountID: os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		R2AccessKeyID:       os.Getenv("R2_ACCESS_KEY_ID"),
		R2AccessKeySecret:   os.Getenv("R2_ACCESS_KEY_SECRET"),
		R2Bucket:            os.Getenv("R2_BUCKET_NAME"),
		CDNBaseURL:          os.Getenv("CDN_BASE_URL"),
	}

	if cfg.CDNBaseURL == "" && cfg.CloudflareAccountID != "" {
		cfg.CDNBaseURL = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.CloudflareAccountID)
	}

	required := []struct {
		key   string
		value string
	}{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"PUBLIC_SITE_URL", cfg.SiteURL},
		{"ADMIN_API_TOKEN", cfg.AdminToken},
		{"STRIPE_SECRET_KEY", cfg.StripeSecretKey},
		{"STRIPE_WEBHOOK_SECRET", cfg.StripeWebhookSecret},
		{"SES_ACCESS_KEY_ID", cfg.SESAccessKeyID},
		{"SES_SECRET_ACCESS_KEY", cfg.SESSecretAccessKey},
		{"EMAIL_SENDER", cfg.EmailSender},
		{"CONTACT_INBOX", cfg.ContactInbox},
		{"CLOUDFLARE_ACCOUNT_ID", cfg.CloudflareAccountID},
		{"R2_ACCESS_KEY_ID", cfg.R2AccessKeyID},
		{"R2_ACCESS_KEY_SECRET", cfg.R2AccessKeySecret},
		{"R2_BUCKET_NAME", cfg.R2Bucket},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
