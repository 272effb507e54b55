package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrEmptyPassword is returned when the password prompt gets no input.
var ErrEmptyPassword = errors.New("password must not be empty")

// readPassword is replaced in tests to keep the terminal out of them.
var readPassword = term.ReadPassword

// Prompt writes label to w and reads one trimmed line from r. When fallback
// is set it is shown in brackets and returned for an empty answer. A last
// line without a newline is accepted.
//
//	Email [ann@example.com]
//	> _
func Prompt(r *bufio.Reader, w io.Writer, label, fallback string) (string, error) {
	if fallback != "" {
		label = fmt.Sprintf("%s [%s]", label, fallback)
	}
	if _, err := fmt.Fprint(w, label+"\n> "); err != nil {
		return "", err
	}

	line, err := r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}

	if line = strings.TrimSpace(line); line == "" {
		return fallback, nil
	}
	return line, nil
}

// PromptPassword reads a password from the terminal without echo.
func PromptPassword(w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Password: "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	if len(pw) == 0 {
		return "", ErrEmptyPassword
	}
	return string(pw), nil
}
