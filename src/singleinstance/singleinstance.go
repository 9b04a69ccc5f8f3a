package singleinstance

// This file defines the API for single-instance ownership and action delegation.

import (
	"context"
	"strings"
)

const (
	// ActionTrigger starts a session in the resident as if its hotkey was pressed.
	ActionTrigger = "TRIGGER"
	// ActionShow brings the resident's window forward.
	ActionShow = "SHOW"
)

// Server owns the TCP endpoint and answers delegated requests.
type Server interface {
	// Start begins listening on the first port of the configured range.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	Request() Request
	RespondSuccess(text string) error
	RespondError(msg string) error
	Close() error
}

// Request is a single delegated action.
type Request struct {
	Action string
}

// Client attempts to delegate an action to a resident server.
type Client interface {
	// TryDelegate scans the port range, performs the handshake and sends action.
	// If no resident is found, returns delegated=false, err=nil.
	TryDelegate(ctx context.Context, action string) (delegated bool, reply string, err error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }

func parseAction(line string) string {
	switch a := strings.ToUpper(strings.TrimSpace(line)); a {
	case ActionTrigger, ActionShow:
		return a
	default:
		return ""
	}
}
