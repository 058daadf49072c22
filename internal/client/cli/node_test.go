package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/semanticapi/internal/client/client"
	"github.com/dmitrijs2005/semanticapi/internal/client/models"
	"github.com/dmitrijs2005/semanticapi/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectServerAndNode(t *testing.T) {
	a, _ := newTestApp(t, &fakeTokens{}, &fakeData{}, "")
	assert.Equal(t, 1, a.serverID)
	assert.Equal(t, common.DefaultNodeID, a.nodeID)

	require.NoError(t, a.SelectServer([]string{"3"}))
	assert.Equal(t, 3, a.serverID)
	require.ErrorIs(t, a.SelectServer([]string{"x"}), client.ErrBadRequest)
	require.ErrorIs(t, a.SelectServer(nil), client.ErrBadRequest)

	require.NoError(t, a.SelectNode([]string{"2-Temperature"}))
	assert.Equal(t, "2-Temperature", a.nodeID)
	require.ErrorIs(t, a.SelectNode([]string{"85"}), client.ErrBadRequest)
}

func TestFetch(t *testing.T) {
	data := &fakeData{node: &models.NodeValue{Value: json.RawMessage(`{"t":1}`), Status: "Good"}}
	a, out := newTestApp(t, &fakeTokens{}, data, "")

	require.NoError(t, a.Fetch(context.Background()))
	assert.Equal(t, 1, data.gotServer)
	assert.Equal(t, "0-85", data.gotIcon)
	assert.Equal(t, "{\"t\":1} [Good]\n", out.String())

	data.err = client.ErrNotFound
	require.ErrorIs(t, a.Fetch(context.Background()), client.ErrNotFound)
}

func TestPost(t *testing.T) {
	data := &fakeData{}
	a, _ := newTestApp(t, &fakeTokens{}, data, "")

	require.NoError(t, a.Post(context.Background(), []string{`{"a":`, `1}`}))
	assert.JSONEq(t, `{"a":1}`, string(data.posted))

	require.ErrorIs(t, a.Post(context.Background(), nil), client.ErrBadRequest)
	require.ErrorIs(t, a.Post(context.Background(), []string{"{"}), client.ErrBadRequest)
}

func TestServers(t *testing.T) {
	data := &fakeData{servers: []models.Server{{ID: 1, Name: "plant", URL: "opc.tcp://plant"}}}
	a, out := newTestApp(t, &fakeTokens{}, data, "")

	require.NoError(t, a.Servers(context.Background()))
	assert.Equal(t, "1\tplant\topc.tcp://plant\n", out.String())
}
