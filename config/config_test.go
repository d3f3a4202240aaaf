package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/hackathon-portal/models"
)

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hackathon?sslmode=disable")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ROUNDS_ROUND1_DEADLINE", "2025-03-12T18:00:00Z")
	t.Setenv("STORAGE_DRIVER", "minio")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "minio", cfg.Storage.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "hackathon.events", cfg.RabbitMQ.Exchange)

	deadlines, err := cfg.Rounds.Deadlines()
	require.NoError(t, err)
	require.Len(t, deadlines, 1)
	assert.Equal(t, time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC), deadlines[models.Round1])
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{URL: "postgres://x"},
		JWT:      JWTConfig{Secret: "s"},
		Storage:  StorageConfig{Driver: "r2"},
	}
	require.NoError(t, valid.Validate())

	badDriver := valid
	badDriver.Storage.Driver = "ftp"
	assert.ErrorContains(t, badDriver.Validate(), "STORAGE_DRIVER")

	badPort := valid
	badPort.Server.Port = 70000
	assert.Error(t, badPort.Validate())

	badDeadline := valid
	badDeadline.Rounds.IST.Deadline = "tomorrow"
	assert.ErrorContains(t, badDeadline.Validate(), "IST")
}
