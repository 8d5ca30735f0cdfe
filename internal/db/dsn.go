package db

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/geocoder89/userapi/internal/config"
	"github.com/go-sql-driver/mysql"
)

// DSN builds the driver-native connection string for cfg.Type.
func DSN(cfg config.DBConfig) (string, error) {
	switch cfg.Type {
	case config.DBPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Path:     "/" + cfg.Name,
			RawQuery: url.Values{"sslmode": {cfg.SSLMode}}.Encode(),
		}
		return u.String(), nil

	case config.DBMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.Loc = time.UTC
		return mc.FormatDSN(), nil

	case config.DBSQLite:
		return "file:" + cfg.Name + "?_foreign_keys=on&_busy_timeout=5000", nil
	}

	return "", fmt.Errorf("no DSN for DB_TYPE %q", cfg.Type)
}
