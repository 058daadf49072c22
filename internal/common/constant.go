// Package common contains shared constants and sentinel errors used across
// the semanticapi server and client.
package common

const (
	// AccessTokenHeaderName is the gRPC metadata key used to carry the
	// access token on outbound requests.
	AccessTokenHeaderName = "access_token"

	// RefreshedTokenHeaderName is the HTTP response header carrying a
	// replacement token when the presented one entered its refresh window.
	RefreshedTokenHeaderName = "X-Refreshed-Token"

	// RequestIDHeaderName carries the request id on HTTP responses and, in
	// lower case, in gRPC metadata.
	RequestIDHeaderName = "X-Request-Id"

	// DefaultNodeID is the OPC-UA Objects folder (ns=0;i=85).
	DefaultNodeID = "0-85"
)
