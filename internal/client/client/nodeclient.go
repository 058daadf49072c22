package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/semanticapi/internal/client/models"
	"github.com/dmitrijs2005/semanticapi/internal/common"
)

var _ DataClient = (*NodeClient)(nil)

// NodeClient calls the HTTP API with the session's bearer token and adopts
// any token the server hands back in X-Refreshed-Token.
type NodeClient struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

func NewNodeClient(baseURL string, timeout time.Duration, session *Session) *NodeClient {
	return &NodeClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		session:    session,
	}
}

func nodePath(serverID int, icon string) string {
	return "/api/serverconf/" + strconv.Itoa(serverID) + "/allnodes/" + url.PathEscape(icon)
}

func (c *NodeClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	token := c.session.Token()
	if token == "" {
		return ErrNotLoggedIn
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if fresh := resp.Header.Get(common.RefreshedTokenHeaderName); fresh != "" {
		c.session.SetToken(fresh)
	}

	if err := statusError(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}

	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)

	var base error
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		base = ErrUnauthorized
	case http.StatusNotFound:
		base = ErrNotFound
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		base = ErrBadRequest
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		base = ErrUnavailable
	default:
		return fmt.Errorf("http status %d: %s", resp.StatusCode, body.Error)
	}

	if body.Error == "" {
		return base
	}
	return fmt.Errorf("%w: %s", base, body.Error)
}

func (c *NodeClient) Servers(ctx context.Context) ([]models.Server, error) {
	var out []models.Server
	if err := c.do(ctx, http.MethodGet, "/api/serverconf", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *NodeClient) GetNode(ctx context.Context, serverID int, icon string) (*models.NodeValue, error) {
	var out models.NodeValue
	if err := c.do(ctx, http.MethodGet, nodePath(serverID, icon), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *NodeClient) PostNode(ctx context.Context, serverID int, icon string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("%w: value is not valid JSON", ErrBadRequest)
	}
	return c.do(ctx, http.MethodPost, nodePath(serverID, icon), value, nil)
}

// Logout revokes the session token on the server and forgets it locally.
func (c *NodeClient) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.session.Clear()
	return nil
}
