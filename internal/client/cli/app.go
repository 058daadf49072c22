package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/semanticapi/internal/client/client"
	"github.com/dmitrijs2005/semanticapi/internal/client/config"
	"github.com/dmitrijs2005/semanticapi/internal/common"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// onlineCheckInterval is how often the watcher pings the server.
const onlineCheckInterval = 5 * time.Second

type App struct {
	config   *config.Config
	tokens   client.TokenClient
	data     client.DataClient
	userName string
	serverID int
	nodeID   string
	reader   *bufio.Reader
	out      io.Writer

	mu   sync.Mutex
	Mode Mode
}

func NewApp(c *config.Config) (*App, error) {

	session := &client.Session{}

	tokens, err := client.NewGRPCClient(c.ServerEndpointAddr, session)
	if err != nil {
		return nil, err
	}
	data := client.NewNodeClient(c.HTTPBaseURL, c.RequestTimeout, session)

	return newApp(c, tokens, data, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(c *config.Config, tokens client.TokenClient, data client.DataClient, r *bufio.Reader, w io.Writer) *App {
	return &App{
		config:   c,
		tokens:   tokens,
		data:     data,
		serverID: 1,
		nodeID:   common.DefaultNodeID,
		reader:   r,
		out:      w,
	}
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

// requestContext bounds a single command by the configured timeout.
func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) Run(ctx context.Context) {
	defer a.tokens.Close()
	a.Root(ctx)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.tokens.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
