package main

import (
	"fmt"
	"os"

	cli "github.com/spf13/pflag"

	"voxassist/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", ipc.SocketPath, "Control socket path")
	cli.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: voxassist-ctl [--socket path] search|list")
		cli.PrintDefaults()
	}
	cli.Parse()

	cmd := "search"
	if cli.NArg() > 0 {
		cmd = cli.Arg(0)
	}

	reply, err := ipc.SendCommand(*socket, cmd)
	if err != nil {
		fmt.Println("voxassist not running:", err)
		os.Exit(1)
	}

	if reply.Message != "" {
		fmt.Println(reply.Message)
	}
	if !reply.OK {
		os.Exit(1)
	}
}
