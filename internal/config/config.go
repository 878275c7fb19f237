package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Config holds every runtime parameter of the platform.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Stripe   StripeConfig
	Fees     FeesConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type RabbitMQConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	ReturnURL     string
	RefreshURL    string
}

// FeesConfig models the marketplace pricing constants. The delivery fee is a
// flat amount and the platform fee is a fraction of the subtotal; both are
// configuration, not business rules.
type FeesConfig struct {
	DeliveryFee     decimal.Decimal
	PlatformFeeRate decimal.Decimal
}

// Load reads the sectioned key:value config file. The format is a small YAML
// subset: top-level `section:` lines followed by indented `key: value` pairs.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	cfg := &Config{}
	cfg.Server.Port = 3000
	cfg.Database.Port = 5432
	cfg.Database.SSLMode = "disable"
	cfg.RabbitMQ.Port = 5672
	cfg.RabbitMQ.VHost = "/"
	cfg.Fees.DeliveryFee = decimal.RequireFromString("5.00")
	cfg.Fees.PlatformFeeRate = decimal.RequireFromString("0.10")

	scanner := bufio.NewScanner(file)
	var section string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasSuffix(line, ":") && !strings.Contains(line, " ") {
			section = strings.TrimSuffix(line, ":")
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		switch section {
		case "server":
			if key == "port" {
				cfg.Server.Port = atoi(value, cfg.Server.Port)
			}
		case "database":
			switch key {
			case "host":
				cfg.Database.Host = value
			case "port":
				cfg.Database.Port = atoi(value, cfg.Database.Port)
			case "user":
				cfg.Database.User = value
			case "password":
				cfg.Database.Password = value
			case "database":
				cfg.Database.Database = value
			case "sslmode":
				if value != "" {
					cfg.Database.SSLMode = value
				}
			}
		case "rabbitmq":
			switch key {
			case "host":
				cfg.RabbitMQ.Host = value
			case "port":
				cfg.RabbitMQ.Port = atoi(value, cfg.RabbitMQ.Port)
			case "user":
				cfg.RabbitMQ.User = value
			case "password":
				cfg.RabbitMQ.Password = value
			case "vhost":
				if value != "" {
					cfg.RabbitMQ.VHost = value
				}
			}
		case "stripe":
			switch key {
			case "secret_key":
				cfg.Stripe.SecretKey = value
			case "webhook_secret":
				cfg.Stripe.WebhookSecret = value
			case "return_url":
				cfg.Stripe.ReturnURL = value
			case "refresh_url":
				cfg.Stripe.RefreshURL = value
			}
		case "fees":
			switch key {
			case "delivery_fee":
				if d, err := decimal.NewFromString(value); err == nil {
					cfg.Fees.DeliveryFee = d
				}
			case "platform_fee_rate":
				if d, err := decimal.NewFromString(value); err == nil {
					cfg.Fees.PlatformFeeRate = d
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if cfg.Database.Host == "" || cfg.Database.User == "" || cfg.Database.Database == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.RabbitMQ.Host == "" || cfg.RabbitMQ.User == "" {
		return nil, fmt.Errorf("rabbitmq config incomplete")
	}
	return cfg, nil
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
