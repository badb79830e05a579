package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	JWTSecret    string `env:"JWT_SECRET,required"`
	JWTExpiryMin int    `env:"JWT_EXPIRY_MIN" envDefault:"720"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`
	WebhookToleranceS   int    `env:"WEBHOOK_TOLERANCE_S" envDefault:"300"`
	PaymentCurrency     string `env:"PAYMENT_CURRENCY" envDefault:"nzd"`
	CheckoutSuccessURL  string `env:"CHECKOUT_SUCCESS_URL" envDefault:"https://afroflavours.co.nz/order/success"`
	CheckoutCancelURL   string `env:"CHECKOUT_CANCEL_URL" envDefault:"https://afroflavours.co.nz/order/cancelled"`

	SMTPHost   string `env:"SMTP_HOST"`
	SMTPPort   int    `env:"SMTP_PORT" envDefault:"465"`
	SMTPUser   string `env:"SMTP_USER"`
	SMTPPass   string `env:"SMTP_PASS"`
	SMTPFrom   string `env:"SMTP_FROM" envDefault:"bookings@afroflavours.co.nz"`
	AdminEmail string `env:"ADMIN_EMAIL"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}
