package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// StatusGood is the OPC-UA status name attached to stored values.
const StatusGood = "Good"

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// NodeID addresses an OPC-UA node in URL-safe form: "<namespace>-<identifier>",
// e.g. "0-85" for ns=0;i=85.
type NodeID struct {
	Namespace  uint16
	Identifier string
}

// ParseNodeID parses the "<namespace>-<identifier>" form.
func ParseNodeID(s string) (NodeID, error) {
	ns, id, ok := strings.Cut(s, "-")
	if !ok {
		return NodeID{}, fmt.Errorf("node id %q: missing namespace separator", s)
	}

	n, err := strconv.ParseUint(ns, 10, 16)
	if err != nil {
		return NodeID{}, fmt.Errorf("node id %q: bad namespace: %w", s, err)
	}
	if !identifierPattern.MatchString(id) {
		return NodeID{}, fmt.Errorf("node id %q: bad identifier", s)
	}

	return NodeID{Namespace: uint16(n), Identifier: id}, nil
}

func (n NodeID) String() string {
	return fmt.Sprintf("%d-%s", n.Namespace, n.Identifier)
}

// OPCUA renders the node id in standard notation: ns=0;i=85 for numeric
// identifiers, ns=2;s=Name otherwise.
func (n NodeID) OPCUA() string {
	if _, err := strconv.ParseUint(n.Identifier, 10, 32); err == nil {
		return fmt.Sprintf("ns=%d;i=%s", n.Namespace, n.Identifier)
	}
	return fmt.Sprintf("ns=%d;s=%s", n.Namespace, n.Identifier)
}

// NodeValue is the last known value of a node on a given server.
type NodeValue struct {
	ServerID  int
	NodeID    string
	Value     json.RawMessage
	Status    string
	UpdatedAt time.Time
}
