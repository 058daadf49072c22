package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. *App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Servers(ctx context.Context) error
	SelectServer(args []string) error
	SelectNode(args []string) error
	Fetch(ctx context.Context) error
	Post(ctx context.Context, args []string) error
}

// runREPL reads commands from r until EOF or "exit" and dispatches them to
// a. Command errors are reported by the handlers themselves. Handlers that
// prompt read from the same reader, so r must not be wrapped again.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("sapi %s> ", statusFn()))
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if !a.isLoggedIn() {
			switch cmd {
			case "help":
				printlnFn("Available commands: login, exit")
				continue
			case "login":
				_ = a.Login(ctx)
				continue
			case "exit", "quit":
				printlnFn("Bye!")
				return
			default:
				printlnFn("Please login first")
				continue
			}
		}

		switch cmd {
		case "help":
			printlnFn("Available commands: servers, server <id>, node <icon>, fetch, post <json>, refresh, whoami, logout, exit")
		case "login":
			_ = a.Login(ctx)
		case "servers":
			_ = a.Servers(ctx)
		case "server":
			_ = a.SelectServer(args)
		case "node":
			_ = a.SelectNode(args)
		case "fetch":
			_ = a.Fetch(ctx)
		case "post":
			_ = a.Post(ctx, args)
		case "refresh":
			_ = a.Refresh(ctx)
		case "whoami":
			_ = a.WhoAmI(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func (a *App) getStatus() string {
	parts := make([]string, 0, 3)
	if a.userName != "" {
		parts = append(parts, a.userName)
		parts = append(parts, fmt.Sprintf("%d/%s", a.serverID, a.nodeID))
	}
	if mode := a.mode(); mode != "" {
		parts = append(parts, string(mode))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (a *App) Root(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Println("Welcome to semanticapi CLI (type 'help' for commands)")

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
