package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/semanticapi/internal/client/client"
)

func (a *App) Servers(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	servers, err := a.data.Servers(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Listing servers failed:", err)
		return err
	}

	for _, s := range servers {
		fmt.Fprintln(a.out, s.String())
	}
	return nil
}

// SelectServer sets the server id used by fetch and post.
func (a *App) SelectServer(args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: server <id>")
		return client.ErrBadRequest
	}

	id, err := strconv.Atoi(args[0])
	if err != nil || id < 0 {
		fmt.Fprintln(a.out, "Server id must be a non-negative integer")
		return client.ErrBadRequest
	}

	a.serverID = id
	return nil
}

// SelectNode sets the node, in "<namespace>-<identifier>" form, used by
// fetch and post.
func (a *App) SelectNode(args []string) error {
	if len(args) != 1 || !strings.Contains(args[0], "-") {
		fmt.Fprintln(a.out, "Usage: node <namespace>-<identifier>, e.g. node 0-85")
		return client.ErrBadRequest
	}

	a.nodeID = args[0]
	return nil
}

func (a *App) Fetch(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	v, err := a.data.GetNode(ctx, a.serverID, a.nodeID)
	if err != nil {
		fmt.Fprintln(a.out, "Fetch failed:", err)
		return err
	}

	fmt.Fprintf(a.out, "%s [%s]\n", string(v.Value), v.Status)
	return nil
}

// Post writes the rest of the command line, which must be JSON, as the
// selected node's value.
func (a *App) Post(ctx context.Context, args []string) error {
	body := strings.TrimSpace(strings.Join(args, " "))
	if body == "" || !json.Valid([]byte(body)) {
		fmt.Fprintln(a.out, "Usage: post <json>")
		return client.ErrBadRequest
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.data.PostNode(ctx, a.serverID, a.nodeID, json.RawMessage(body)); err != nil {
		fmt.Fprintln(a.out, "Post failed:", err)
		return err
	}

	fmt.Fprintln(a.out, "Saved")
	return nil
}
