// Package ipc is the local control socket used by voxassist-ctl.
package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	log "log/slog"
)

const SocketPath = "/tmp/voxassist.sock"

type ControlMessage struct {
	Cmd string `json:"cmd"`
}

type Reply struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type Handler func(ControlMessage) Reply

type Server struct {
	ln net.Listener
}

// StartServer removes a stale socket at path, listens on it and serves
// each connection on its own goroutine until Close.
func StartServer(path string, handler Handler) (*Server, error) {
	if path == "" {
		path = SocketPath
	}
	os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if errors.Is(err, net.ErrClosed) {
				return
			}
			if err != nil {
				log.Warn("Failed to accept control connection", "err", err)
				continue
			}
			go handleConn(conn, handler)
		}
	}()

	return &Server{ln: ln}, nil
}

func (s *Server) Close() error { return s.ln.Close() }

func handleConn(conn net.Conn, handler Handler) {
	defer conn.Close()

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		log.Debug("Bad control message", "err", err)
		return
	}
	log.Debug("Control command", "cmd", msg.Cmd)

	if err := json.NewEncoder(conn).Encode(handler(msg)); err != nil {
		log.Debug("Failed to write control reply", "err", err)
	}
}

// SendCommand sends cmd and waits for the reply. Voice capture can take a
// while, so the deadline is generous.
func SendCommand(path, cmd string) (Reply, error) {
	if path == "" {
		path = SocketPath
	}
	conn, err := net.Dial("unix", path)
	if err != nil {
		return Reply{}, err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * time.Minute))

	if err := json.NewEncoder(conn).Encode(ControlMessage{Cmd: cmd}); err != nil {
		return Reply{}, err
	}

	var reply Reply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		return Reply{}, fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}
