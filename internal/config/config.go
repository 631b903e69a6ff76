package config

import (
	"errors"
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr        string
	DBDSN           string
	JWTIssuer       string
	JWTSecret       string
	JWTTTL          time.Duration
	WebSocketOrigin string
	ScanInterval    time.Duration
	ScanBackoff     time.Duration
	DefaultMargin   string
}

func Load() (Config, error) {
	var c Config
	var missing []string
	c.HTTPAddr = os.Getenv("HTTP_ADDR")
	if c.HTTPAddr == "" {
		missing = append(missing, "HTTP_ADDR")
	}
	c.DBDSN = os.Getenv("DB_DSN")
	if c.DBDSN == "" {
		missing = append(missing, "DB_DSN")
	}
	c.JWTIssuer = os.Getenv("JWT_ISSUER")
	if c.JWTIssuer == "" {
		missing = append(missing, "JWT_ISSUER")
	}
	c.JWTSecret = os.Getenv("JWT_SECRET")
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	jwtTTL := os.Getenv("JWT_TTL")
	if jwtTTL == "" {
		c.JWTTTL = 24 * time.Hour
	} else {
		d, err := time.ParseDuration(jwtTTL)
		if err != nil {
			return c, err
		}
		c.JWTTTL = d
	}
	c.WebSocketOrigin = os.Getenv("WS_ORIGIN")
	scan := os.Getenv("SCAN_INTERVAL")
	if scan == "" {
		c.ScanInterval = 5 * time.Second
	} else {
		d, err := time.ParseDuration(scan)
		if err != nil {
			return c, err
		}
		c.ScanInterval = d
	}
	backoff := os.Getenv("SCAN_BACKOFF")
	if backoff == "" {
		c.ScanBackoff = 10 * time.Second
	} else {
		d, err := time.ParseDuration(backoff)
		if err != nil {
			return c, err
		}
		c.ScanBackoff = d
	}
	c.DefaultMargin = os.Getenv("DEFAULT_MARGIN")
	if c.DefaultMargin == "" {
		c.DefaultMargin = "100000"
	}
	if len(missing) > 0 {
		return c, errors.New("missing required env: " + strings.Join(missing, ","))
	}
	return c, nil
}
