package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// printFn prints the prompt without a trailing newline.
var printFn = fmt.Print

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Go(ctx context.Context, target string) error
	Where(ctx context.Context) error
	Events(ctx context.Context) error
	Event(ctx context.Context, id string) error
	Organized(ctx context.Context) error
	Manage(ctx context.Context, id string) error
	SignUp(ctx context.Context, id string) error
	MyEvents(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login, register, go <path>, where, help, exit"
	helpLoggedIn  = "Available commands: events, event <id>, signup <id>, myevents, organized, manage <id>, go <path>, where, whoami, logout, help, exit"
)

// runREPL starts a simple read-eval-print loop.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. The loop exits on EOF, on cancellation of
// ctx, or when the user types "exit" or "quit".
//
// Errors returned by command handlers are printed and the loop goes on.
// Cancelling ctx ends the loop even while it waits for input.
func runREPL(ctx context.Context, a execIface, promptFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printFn(promptFn())

		line, err := readLine(ctx, reader)
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			printlnFn()
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "go", "cd":
			if len(args) != 1 {
				printlnFn("Usage: go <path>")
				continue
			}
			cmdErr = a.Go(ctx, args[0])

		case "where", "pwd":
			cmdErr = a.Where(ctx)

		case "events", "ls":
			cmdErr = a.Events(ctx)

		case "event":
			if len(args) != 1 {
				printlnFn("Usage: event <id>")
				continue
			}
			cmdErr = a.Event(ctx, args[0])

		case "organized":
			cmdErr = a.Organized(ctx)

		case "manage":
			if len(args) != 1 {
				printlnFn("Usage: manage <event id>")
				continue
			}
			cmdErr = a.Manage(ctx, args[0])

		case "signup":
			if len(args) != 1 {
				printlnFn("Usage: signup <event id>")
				continue
			}
			cmdErr = a.SignUp(ctx, args[0])

		case "myevents":
			cmdErr = a.MyEvents(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn(errorStyle.Render("Error: " + cmdErr.Error()))
		}
	}
}

type lineResult struct {
	line string
	err  error
}

// readLine reads one line from reader, giving up when ctx is done. The
// abandoned read keeps the reader; the loop never reads from it again.
func readLine(ctx context.Context, reader *bufio.Reader) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := reader.ReadString('\n')
		ch <- lineResult{line, err}
	}()

	select {
	case r := <-ch:
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
