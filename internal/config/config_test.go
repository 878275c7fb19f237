package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080

database:
  host: db.internal
  port: 5433
  user: teka
  password: secret
  database: teka

rabbitmq:
  host: mq.internal
  user: guest
  password: guest

stripe:
  secret_key: sk_test_abc
  webhook_secret: whsec_abc

fees:
  delivery_fee: 4.00
  platform_fee_rate: 0.15
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "mq.internal", cfg.RabbitMQ.Host)
	assert.Equal(t, "/", cfg.RabbitMQ.VHost)
	assert.Equal(t, "sk_test_abc", cfg.Stripe.SecretKey)
	assert.Equal(t, "4.00", cfg.Fees.DeliveryFee.StringFixed(2))
	assert.Equal(t, "0.15", cfg.Fees.PlatformFeeRate.String())
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  user: teka
  database: teka

rabbitmq:
  host: localhost
  user: guest
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "5.00", cfg.Fees.DeliveryFee.StringFixed(2))
	assert.Equal(t, "0.10", cfg.Fees.PlatformFeeRate.StringFixed(2))
}

func TestLoadIncomplete(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}
