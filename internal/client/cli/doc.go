// Package cli implements the SalonDesk terminal client: a small REPL over
// the auth and CRM services, with non-echoing password input.
package cli
