package ipc

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctl.sock")

	srv, err := StartServer(path, func(msg ControlMessage) Reply {
		if msg.Cmd == "list" {
			return Reply{OK: true, Message: "2 pending"}
		}
		return Reply{Message: "unknown command: " + msg.Cmd}
	})
	require.NoError(t, err)
	defer srv.Close()

	reply, err := SendCommand(path, "list")
	require.NoError(t, err)
	assert.Equal(t, Reply{OK: true, Message: "2 pending"}, reply)

	reply, err = SendCommand(path, "dance")
	require.NoError(t, err)
	assert.False(t, reply.OK)
	assert.Equal(t, "unknown command: dance", reply.Message)
}

func TestSendCommand_NoServer(t *testing.T) {
	_, err := SendCommand(filepath.Join(t.TempDir(), "missing.sock"), "search")
	assert.Error(t, err)
}

func TestStartServer_ReplacesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctl.sock")

	first, err := StartServer(path, func(ControlMessage) Reply { return Reply{OK: true} })
	require.NoError(t, err)
	first.Close()

	second, err := StartServer(path, func(ControlMessage) Reply { return Reply{OK: true, Message: "second"} })
	require.NoError(t, err)
	defer second.Close()

	reply, err := SendCommand(path, "search")
	require.NoError(t, err)
	assert.Equal(t, "second", reply.Message)
}
