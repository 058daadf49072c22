// Package config handles configuration for the semanticapi server,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"log/slog"
	"time"
)

// JwtOptions configures token issuance. It is loaded once at startup and
// handed to the token manager by value; nothing mutates it afterwards.
type JwtOptions struct {
	Issuer          string `json:"issuer"`
	Audience        string `json:"audience"`
	SecurityKey     string `json:"security_key"`
	DurationMinutes int    `json:"duration_minutes"`
	RefreshTime     int    `json:"refresh_time"`
}

// Duration is the lifetime given to every issued token.
func (o JwtOptions) Duration() time.Duration {
	return time.Duration(o.DurationMinutes) * time.Minute
}

// RefreshWindow is how long before expiry a token becomes refreshable.
func (o JwtOptions) RefreshWindow() time.Duration {
	return time.Duration(o.RefreshTime) * time.Minute
}

// LogValue keeps the signing key out of structured logs.
func (o JwtOptions) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("issuer", o.Issuer),
		slog.String("audience", o.Audience),
		slog.String("security_key", "[REDACTED]"),
		slog.Int("duration_minutes", o.DurationMinutes),
		slog.Int("refresh_time", o.RefreshTime),
	)
}

// ServerIdentity describes one OPC-UA server the API fronts.
type ServerIdentity struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ServerOptions is the static list of known servers.
type ServerOptions struct {
	Servers []ServerIdentity `json:"servers"`
}

// Credential is a user allowed to log in. PasswordHash is a bcrypt hash.
type Credential struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

// Config holds runtime settings for the semanticapi server.
//
// Fields:
//   - EndpointAddrHTTP / EndpointAddrGRPC: bind addresses of the two APIs.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory node store.
//   - RedisAddr / RedisPassword: revocation store. Empty address selects memory.
//   - AllowedOrigin: CORS origin of the browser UI.
//   - RevokeOnRefresh: revoke the superseded token when a refresh happens.
//   - Jwt: token issuance settings. Do not use the default key in prod.
//   - Servers: known OPC-UA servers.
//   - Users: accounts accepted by login.
type Config struct {
	EndpointAddrHTTP string
	EndpointAddrGRPC string
	DatabaseDSN      string
	RedisAddr        string
	RedisPassword    string
	AllowedOrigin    string
	RevokeOnRefresh  bool
	Jwt              JwtOptions
	Servers          ServerOptions
	Users            []Credential
}

// LoadDefaults populates Config with development defaults.
// NOTE: the signing key is public; override it outside local runs.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":4000"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.RedisAddr = ""
	c.RedisPassword = ""
	c.AllowedOrigin = "http://localhost:4200"
	c.RevokeOnRefresh = false
	c.Jwt = JwtOptions{
		Issuer:          "semanticapi",
		Audience:        "semanticapi-clients",
		SecurityKey:     "dev-only-signing-key-change-me-0123456789",
		DurationMinutes: 60,
		RefreshTime:     5,
	}
	c.Servers = ServerOptions{Servers: []ServerIdentity{
		{ID: 1, Name: "local", URL: "opc.tcp://localhost:4840"},
	}}
	c.Users = nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
