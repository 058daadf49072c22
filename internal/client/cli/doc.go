// Package cli provides the interactive semanticapi command-line client.
//
// It wires configuration, the gRPC token client and the HTTP node client
// into a REPL. Typical flow: log in, pick a server and a node, then fetch or
// post node values. Tokens refreshed by the server are adopted silently.
//
// Commands:
//   - login / logout / whoami
//   - servers, server <id>, node <icon>
//   - fetch, post <json>
//   - refresh, exit
package cli
