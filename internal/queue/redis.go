package queue

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hibiken/asynq"
)

// RedisOpt builds asynq connection options from the shared Redis settings.
// addr is either host:port, in which case password and db apply, or a
// redis:// / rediss:// URL that carries its own credentials and database.
func RedisOpt(addr, password string, db int) (asynq.RedisClientOpt, error) {
	if !strings.Contains(addr, "://") {
		return asynq.RedisClientOpt{Addr: addr, Password: password, DB: db}, nil
	}
	return ParseRedisURL(addr)
}

// ParseRedisURL parses redis://[:password@]host:port[/db], the rediss://
// TLS variant, or a bare host:port.
func ParseRedisURL(redisURL string) (asynq.RedisClientOpt, error) {
	var opt asynq.RedisClientOpt

	if !strings.Contains(redisURL, "://") {
		opt.Addr = redisURL
		return opt, nil
	}

	u, err := url.Parse(redisURL)
	if err != nil {
		return opt, fmt.Errorf("invalid redis URL: %w", err)
	}

	switch u.Scheme {
	case "redis":
	case "rediss":
		opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	default:
		return opt, fmt.Errorf("unsupported redis URL scheme: %s (expected 'redis' or 'rediss')", u.Scheme)
	}

	if u.Host == "" {
		return opt, fmt.Errorf("redis URL missing host")
	}
	opt.Addr = u.Host

	if u.User != nil {
		opt.Password, _ = u.User.Password()
	}

	if dbStr := strings.TrimPrefix(u.Path, "/"); dbStr != "" {
		n, err := strconv.Atoi(dbStr)
		if err != nil {
			return opt, fmt.Errorf("invalid database number in redis URL: %s", dbStr)
		}
		opt.DB = n
	}

	return opt, nil
}
