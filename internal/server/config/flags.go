package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/semanticapi/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":4000")
//	-g string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-r string   Redis address
//	-o string   allowed CORS origin
//	-i string   token issuer
//	-u string   token audience
//	-k string   HMAC signing key
//	-t int      token duration, minutes
//	-w int      refresh window, minutes
//	-R          revoke the old token on refresh
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-g", "-d", "-r", "-o", "-i", "-u", "-k", "-t", "-w", "-R"},
		"-R")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.AllowedOrigin, "o", config.AllowedOrigin, "allowed CORS origin")
	fs.StringVar(&config.Jwt.Issuer, "i", config.Jwt.Issuer, "token issuer")
	fs.StringVar(&config.Jwt.Audience, "u", config.Jwt.Audience, "token audience")
	fs.StringVar(&config.Jwt.SecurityKey, "k", config.Jwt.SecurityKey, "token signing key")
	fs.IntVar(&config.Jwt.DurationMinutes, "t", config.Jwt.DurationMinutes, "token duration (in minutes)")
	fs.IntVar(&config.Jwt.RefreshTime, "w", config.Jwt.RefreshTime, "refresh window (in minutes)")
	fs.BoolVar(&config.RevokeOnRefresh, "R", config.RevokeOnRefresh, "revoke superseded tokens on refresh")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
