// Package client contains the client-side transports for semanticapi.
//
// # Overview
//
//  1. TokenClient (GRPCClient) logs in, refreshes and inspects the session
//     token over gRPC. Its interceptor attaches the token as access_token
//     metadata and transparently refreshes it once when the server reports
//     it expired.
//  2. DataClient (NodeClient) reads and writes node values over the HTTP
//     API with a bearer token and adopts the X-Refreshed-Token header.
//
// Both share a Session, so whichever transport sees a new token first
// updates the other.
//
// # Error Handling
//
// Transport failures map to sentinel errors matched with errors.Is:
// ErrUnavailable, ErrUnauthorized, ErrNotFound, ErrBadRequest, ErrNotLoggedIn.
package client
