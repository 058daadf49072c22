package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/semanticapi/internal/client/config"
	"github.com/dmitrijs2005/semanticapi/internal/client/models"
)

type fakeTokens struct {
	loginUser string
	loginPass []byte
	loginErr  error

	refreshChanged bool
	refreshErr     error

	who    string
	whoErr error

	pingErr error
	closed  bool
}

func (f *fakeTokens) Close() error { f.closed = true; return nil }
func (f *fakeTokens) Login(_ context.Context, user string, pass []byte) error {
	f.loginUser, f.loginPass = user, append([]byte(nil), pass...)
	return f.loginErr
}
func (f *fakeTokens) Refresh(context.Context) (bool, error) { return f.refreshChanged, f.refreshErr }
func (f *fakeTokens) IsRefreshable(context.Context) (bool, error) {
	return f.refreshChanged, f.refreshErr
}
func (f *fakeTokens) WhoAmI(context.Context) (string, error) { return f.who, f.whoErr }
func (f *fakeTokens) Ping(context.Context) error             { return f.pingErr }

type fakeData struct {
	servers []models.Server
	node    *models.NodeValue
	err     error

	gotServer int
	gotIcon   string
	posted    json.RawMessage
	loggedOut bool
}

func (f *fakeData) Servers(context.Context) ([]models.Server, error) { return f.servers, f.err }
func (f *fakeData) GetNode(_ context.Context, serverID int, icon string) (*models.NodeValue, error) {
	f.gotServer, f.gotIcon = serverID, icon
	return f.node, f.err
}
func (f *fakeData) PostNode(_ context.Context, serverID int, icon string, value json.RawMessage) error {
	f.gotServer, f.gotIcon, f.posted = serverID, icon, value
	return f.err
}
func (f *fakeData) Logout(context.Context) error {
	f.loggedOut = true
	return f.err
}

func newTestApp(t *testing.T, tokens *fakeTokens, data *fakeData, input string) (*App, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	var out bytes.Buffer
	return newApp(cfg, tokens, data, bufio.NewReader(strings.NewReader(input)), &out), &out
}

func stubInputs(t *testing.T, username string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return username, nil }
	getPassword = func(_ io.Writer) ([]byte, error) { return password, nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}
