package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/semanticapi/internal/flagx"
)

// JsonConfig mirrors Config for unmarshalling. It is seeded from the current
// Config so keys missing from the file keep their previous values.
type JsonConfig struct {
	EndpointAddrHTTP string           `json:"endpoint_addr_http"`
	EndpointAddrGRPC string           `json:"endpoint_addr_grpc"`
	DatabaseDSN      string           `json:"database_dsn"`
	RedisAddr        string           `json:"redis_addr"`
	RedisPassword    string           `json:"redis_password"`
	AllowedOrigin    string           `json:"allowed_origin"`
	RevokeOnRefresh  bool             `json:"revoke_on_refresh"`
	Jwt              JwtOptions       `json:"jwt"`
	Servers          []ServerIdentity `json:"servers"`
	Users            []Credential     `json:"users"`
}

// parseJson loads configuration values from the JSON file named by -c,
// -config or $CONFIG into config. Without a path nothing happens. An
// unreadable file or invalid JSON panics: configuration errors are fatal at
// startup.
func parseJson(config *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{
		EndpointAddrHTTP: config.EndpointAddrHTTP,
		EndpointAddrGRPC: config.EndpointAddrGRPC,
		DatabaseDSN:      config.DatabaseDSN,
		RedisAddr:        config.RedisAddr,
		RedisPassword:    config.RedisPassword,
		AllowedOrigin:    config.AllowedOrigin,
		RevokeOnRefresh:  config.RevokeOnRefresh,
		Jwt:              config.Jwt,
		Servers:          config.Servers.Servers,
		Users:            config.Users,
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.DatabaseDSN = c.DatabaseDSN
	config.RedisAddr = c.RedisAddr
	config.RedisPassword = c.RedisPassword
	config.AllowedOrigin = c.AllowedOrigin
	config.RevokeOnRefresh = c.RevokeOnRefresh
	config.Jwt = c.Jwt
	config.Servers = ServerOptions{Servers: c.Servers}
	config.Users = c.Users
}
