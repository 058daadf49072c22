package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/semanticapi/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It is seeded
// from the current Config so missing keys keep their values.
type JsonConfig struct {
	ServerEndpointAddr    string `json:"server_endpoint_addr"`
	HTTPBaseURL           string `json:"http_base_url"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
}

// parseJson overlays Config with values loaded from a JSON file. Read or
// unmarshal errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	jc := JsonConfig{
		ServerEndpointAddr:    cfg.ServerEndpointAddr,
		HTTPBaseURL:           cfg.HTTPBaseURL,
		RequestTimeoutSeconds: int(cfg.RequestTimeout.Seconds()),
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	cfg.HTTPBaseURL = jc.HTTPBaseURL
	cfg.RequestTimeout = time.Duration(jc.RequestTimeoutSeconds) * time.Second
}
