package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Setup(ctx context.Context) error
	Logout(ctx context.Context) error
	ListClients(ctx context.Context) error
	AddClient(ctx context.Context) error
	ListAppointments(ctx context.Context) error
	BookAppointment(ctx context.Context) error
	ListCatalog(ctx context.Context) error
	ListStaff(ctx context.Context) error
	Upload(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the SalonDesk CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("salon> %s ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: clients, addclient, appointments, book, services, staff, upload, logout, exit")
			} else {
				printlnFn("Available commands: login, register, setup, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "register":
			_ = a.Register(ctx)

		case "setup":
			_ = a.Setup(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "c", "clients":
			_ = a.ListClients(ctx)

		case "addclient":
			_ = a.AddClient(ctx)

		case "appointments":
			_ = a.ListAppointments(ctx)

		case "book":
			_ = a.BookAppointment(ctx)

		case "services":
			_ = a.ListCatalog(ctx)

		case "staff":
			_ = a.ListStaff(ctx)

		case "upload":
			_ = a.Upload(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
