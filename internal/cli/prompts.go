package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

func (r *REPL) readLine() (string, bool) {
	if !r.scanner.Scan() {
		return "", false
	}
	return r.scanner.Text(), true
}

// prompt prints a label and reads one trimmed line.
func (r *REPL) prompt(label string) string {
	fmt.Fprint(r.out, label)
	line, _ := r.readLine()
	return strings.TrimSpace(line)
}

// promptFloat reads a decimal number, reporting false on bad input.
func (r *REPL) promptFloat(label string) (float64, bool) {
	raw := r.prompt(label)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fmt.Fprintln(r.out, "Invalid input! Please enter a number.")
		return 0, false
	}
	return value, true
}

// promptInt reads an integer, reporting false on bad input.
func (r *REPL) promptInt(label string) (int64, bool) {
	raw := r.prompt(label)
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fmt.Fprintln(r.out, "Invalid input! Please enter a whole number.")
		return 0, false
	}
	return value, true
}

// promptPassword reads a password without echo when stdin is a terminal,
// falling back to a plain line read for pipes and tests.
func (r *REPL) promptPassword(label string) string {
	fmt.Fprint(r.out, label)
	if f, ok := r.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(r.out)
		if err != nil {
			return ""
		}
		return string(password)
	}

	line, _ := r.readLine()
	return strings.TrimSpace(line)
}
