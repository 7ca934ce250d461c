package database

import (
	"fmt"
	"math"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yourorg/trading-admin/internal/config"
)

// BuildDSN renders the driver specific connection string for cfg
func BuildDSN(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case DriverSQLServer:
		return sqlServerDSN(cfg), nil
	case DriverPgx, DriverPostgres:
		return postgresDSN(cfg), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Address identifies the target in logs and errors without credentials
func Address(cfg config.DatabaseConfig) string {
	return net.JoinHostPort(cfg.Host, cfg.Port) + "/" + cfg.DBName
}

func sqlServerDSN(cfg config.DatabaseConfig) string {
	query := url.Values{}
	query.Set("database", cfg.DBName)
	if seconds := timeoutSeconds(cfg.ConnectTimeout); seconds > 0 {
		query.Set("dial timeout", strconv.Itoa(seconds))
		query.Set("connection timeout", strconv.Itoa(seconds))
	}
	if cfg.Encrypt != "" {
		query.Set("encrypt", cfg.Encrypt)
	}
	if cfg.AppName != "" {
		query.Set("app name", cfg.AppName)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, cfg.Port),
		RawQuery: query.Encode(),
	}
	return u.String()
}

func postgresDSN(cfg config.DatabaseConfig) string {
	parts := []string{
		"host=" + quoteValue(cfg.Host),
		"port=" + quoteValue(cfg.Port),
		"user=" + quoteValue(cfg.User),
		"password=" + quoteValue(cfg.Password),
		"dbname=" + quoteValue(cfg.DBName),
		"sslmode=" + quoteValue(cfg.SSLMode),
	}
	if seconds := timeoutSeconds(cfg.ConnectTimeout); seconds > 0 {
		parts = append(parts, "connect_timeout="+strconv.Itoa(seconds))
	}
	if cfg.AppName != "" {
		parts = append(parts, "application_name="+quoteValue(cfg.AppName))
	}
	return strings.Join(parts, " ")
}

// quoteValue quotes a keyword/value DSN value when libpq would otherwise misparse it
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func timeoutSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
