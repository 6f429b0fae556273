package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubExec records which commands the REPL dispatched.
type stubExec struct {
	loggedIn bool
	calls    []string
}

func (s *stubExec) record(name string) error {
	s.calls = append(s.calls, name)
	return nil
}

func (s *stubExec) isLoggedIn() bool                       { return s.loggedIn }
func (s *stubExec) Login(context.Context) error            { return s.record("login") }
func (s *stubExec) Register(context.Context) error         { return s.record("register") }
func (s *stubExec) Setup(context.Context) error            { return s.record("setup") }
func (s *stubExec) Logout(context.Context) error           { return s.record("logout") }
func (s *stubExec) ListClients(context.Context) error      { return s.record("clients") }
func (s *stubExec) AddClient(context.Context) error        { return s.record("addclient") }
func (s *stubExec) ListAppointments(context.Context) error { return s.record("appointments") }
func (s *stubExec) BookAppointment(context.Context) error  { return s.record("book") }
func (s *stubExec) ListCatalog(context.Context) error      { return s.record("services") }
func (s *stubExec) ListStaff(context.Context) error        { return s.record("staff") }
func (s *stubExec) Upload(context.Context) error           { return s.record("upload") }

func runScript(t *testing.T, exec *stubExec, script string) []string {
	t.Helper()

	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(a...))
		return 0, nil
	}
	defer func() { printlnFn = orig }()

	scanner := bufio.NewScanner(strings.NewReader(script))
	runREPL(context.Background(), exec, func() string { return "status" }, scanner)
	return lines
}

func TestREPL_DispatchesCommands(t *testing.T) {
	exec := &stubExec{}
	runScript(t, exec, "login\nclients\nbook\nstaff\nexit\n")

	assert.Equal(t, []string{"login", "clients", "book", "staff"}, exec.calls)
}

func TestREPL_ShortClientAlias(t *testing.T) {
	exec := &stubExec{}
	runScript(t, exec, "c\nexit\n")

	assert.Equal(t, []string{"clients"}, exec.calls)
}

func TestREPL_UnknownCommand(t *testing.T) {
	exec := &stubExec{}
	lines := runScript(t, exec, "dance\nexit\n")

	joined := strings.Join(lines, "")
	assert.Contains(t, joined, "Unknown command: dance")
	assert.Empty(t, exec.calls)
}

func TestREPL_HelpDependsOnLoginState(t *testing.T) {
	exec := &stubExec{}
	lines := runScript(t, exec, "help\nexit\n")
	assert.Contains(t, strings.Join(lines, ""), "login, register, setup")

	exec = &stubExec{loggedIn: true}
	lines = runScript(t, exec, "help\nexit\n")
	assert.Contains(t, strings.Join(lines, ""), "clients, addclient")
}

func TestREPL_BlankLinesIgnored(t *testing.T) {
	exec := &stubExec{}
	runScript(t, exec, "\n\n   \nexit\n")

	assert.Empty(t, exec.calls)
}

func TestREPL_ExitsOnEOF(t *testing.T) {
	exec := &stubExec{}
	runScript(t, exec, "clients\n")

	assert.Equal(t, []string{"clients"}, exec.calls)
}
