package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

const (
	defaultDelegateTimeout = 2 * time.Second
	statusSuccess          = "SUCCESS"
	statusError            = "ERROR"
)

// tcpClient finds the resident by PING and hands it one action per
// connection.
type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) TryDelegate(ctx context.Context, action string) (bool, string, error) {
	timeout := timeoutFrom(ctx, defaultDelegateTimeout)
	addr, ok := findResident(Ports(), timeout)
	if !ok {
		return false, "", nil
	}
	reply, err := send(addr, action, timeout)
	return true, reply, err
}

// findResident returns the first address in r answering PING with PONG.
func findResident(r PortRange, timeout time.Duration) (string, bool) {
	for _, addr := range r.Addrs() {
		if ping(addr, timeout) {
			return addr, true
		}
	}
	return "", false
}

func ping(addr string, timeout time.Duration) bool {
	line, _, err := roundTrip(addr, pingRequest, timeout)
	return err == nil && line == pongResponse
}

// send delivers action and decodes the resident's status line. An ERROR
// status becomes the returned error with the resident's message.
func send(addr, action string, timeout time.Duration) (string, error) {
	status, body, err := roundTrip(addr, action+"\n", timeout)
	if err != nil {
		return "", err
	}
	switch strings.TrimSuffix(status, "\n") {
	case statusSuccess:
		return body, nil
	case statusError:
		return "", errors.New(body)
	default:
		return "", fmt.Errorf("unexpected status %q", status)
	}
}

// roundTrip writes one request line and returns the first response line and
// whatever follows it until the resident closes the connection.
func roundTrip(addr, request string, timeout time.Duration) (string, string, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", "", err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	if _, err := io.WriteString(conn, request); err != nil {
		return "", "", err
	}
	br := bufio.NewReader(conn)
	line, err := br.ReadString('\n')
	if err != nil {
		return "", "", err
	}
	if line == pongResponse {
		return line, "", nil
	}
	body, _ := io.ReadAll(br)
	return line, string(body), nil
}

func timeoutFrom(ctx context.Context, def time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return def
}
