package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Passwd(ctx context.Context) error
	Whoami(ctx context.Context) error
	Status(ctx context.Context) error
	Image(ctx context.Context) error
}

// runREPL reads commands from reader and dispatches them to a until the user
// types "exit" or input ends. Handlers report their own errors to the user;
// anything they return is printed as a last resort.
//
//	Not signed in: register, login, image, status, help, exit
//	Signed in:     passwd, whoami, logout, image, status, help, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "clickpass %s> ", statusFn())
		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		var cmdErr error
		switch cmd := parts[0]; cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: passwd, whoami, logout, image, status, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, login, image, status, exit")
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "passwd":
			cmdErr = a.Passwd(ctx)
		case "whoami":
			cmdErr = a.Whoami(ctx)
		case "status":
			cmdErr = a.Status(ctx)
		case "image":
			cmdErr = a.Image(ctx)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
		if cmdErr != nil {
			fmt.Fprintln(w, "Error:", cmdErr)
		}
	}
}
