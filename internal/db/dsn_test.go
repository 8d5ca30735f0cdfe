package db_test

import (
	"testing"

	"github.com/geocoder89/userapi/internal/config"
	"github.com/geocoder89/userapi/internal/db"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DBConfig
		want string
	}{
		{
			name: "postgres escapes credentials",
			cfg: config.DBConfig{
				Type: config.DBPostgres, Host: "db", Port: 5432,
				User: "app", Password: "p@ss/word", Name: "users", SSLMode: "disable",
			},
			want: "postgres://app:p%40ss%2Fword@db:5432/users?sslmode=disable",
		},
		{
			name: "sqlite file",
			cfg:  config.DBConfig{Type: config.DBSQLite, Name: "/tmp/users.db"},
			want: "file:/tmp/users.db?_foreign_keys=on&_busy_timeout=5000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.DSN(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDSN_MySQL(t *testing.T) {
	got, err := db.DSN(config.DBConfig{
		Type: config.DBMySQL, Host: "db", Port: 3306,
		User: "app", Password: "secret", Name: "users",
	})
	require.NoError(t, err)

	mc, err := mysql.ParseDSN(got)
	require.NoError(t, err)

	assert.Equal(t, "db:3306", mc.Addr)
	assert.Equal(t, "users", mc.DBName)
	assert.Equal(t, "app", mc.User)
	assert.True(t, mc.ParseTime)
}

func TestDSN_Memory(t *testing.T) {
	_, err := db.DSN(config.DBConfig{Type: config.DBMemory})
	assert.Error(t, err)
}
