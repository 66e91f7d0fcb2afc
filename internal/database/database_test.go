package database

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/relgraph/internal/config"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.StoreConfig
		expected string
	}{
		{
			name: "basic DSN",
			cfg: &config.StoreConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Password: "secret",
				Database: "discograph",
				TLS:      "preferred",
			},
			expected: "root:secret@tcp(localhost:3306)/discograph?parseTime=true&charset=utf8mb4&tls=preferred",
		},
		{
			name: "DSN without database",
			cfg: &config.StoreConfig{
				Host: "localhost", Port: 3306, User: "root", Password: "secret",
			},
			expected: "root:secret@tcp(localhost:3306)/?parseTime=true&charset=utf8mb4&tls=preferred",
		},
		{
			name: "DSN with TLS disabled",
			cfg: &config.StoreConfig{
				Host: "db", Port: 3307, User: "app", Password: "pw", Database: "graph", TLS: "disable",
			},
			expected: "app:pw@tcp(db:3307)/graph?parseTime=true&charset=utf8mb4&tls=false",
		},
		{
			name: "DSN with TLS required",
			cfg: &config.StoreConfig{
				Host: "db", Port: 3306, User: "app", Password: "pw", Database: "graph", TLS: "required",
			},
			expected: "app:pw@tcp(db:3306)/graph?parseTime=true&charset=utf8mb4&tls=true",
		},
		{
			name: "special characters in password",
			cfg: &config.StoreConfig{
				Host: "localhost", Port: 3306, User: "root", Password: "p@ss:word", Database: "graph",
			},
			expected: "root:p@ss:word@tcp(localhost:3306)/graph?parseTime=true&charset=utf8mb4&tls=preferred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildDSN(tt.cfg))
		})
	}
}

func TestNewManager(t *testing.T) {
	cfg := &config.StoreConfig{Host: "localhost", Port: 3306}

	manager := NewManager(cfg, nil)
	require.NotNil(t, manager)
	assert.Same(t, cfg, manager.config)
	assert.NotNil(t, manager.logger)
	assert.Nil(t, manager.DB, "DB should be nil before Connect()")
	assert.Equal(t, 3, manager.maxRetries)
}

func TestManager_CloseWithoutConnect(t *testing.T) {
	manager := NewManager(&config.StoreConfig{Host: "localhost"}, nil)
	assert.NoError(t, manager.Close())
}

func TestManager_PingWithoutConnect(t *testing.T) {
	manager := NewManager(&config.StoreConfig{Host: "localhost"}, nil)
	assert.ErrorContains(t, manager.Ping(context.Background()), "not connected")
}

func TestManager_PingAndClose(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	manager := NewManager(&config.StoreConfig{}, nil)
	manager.DB = db

	mock.ExpectPing()
	assert.NoError(t, manager.Ping(context.Background()))

	mock.ExpectClose()
	assert.NoError(t, manager.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_ConnectCancelled(t *testing.T) {
	manager := NewManager(&config.StoreConfig{
		Host: "127.0.0.1", Port: 1, User: "nobody", TLS: "disable",
	}, nil)
	manager.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := manager.Connect(ctx)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to connect to store database"))
	assert.Nil(t, manager.DB)
}
