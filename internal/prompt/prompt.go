// Package prompt asks the operator questions on a line oriented terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoInput is returned when input ends before an answer is given
var ErrNoInput = errors.New("no input")

type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// WaitForEnter prints message and blocks until a line is read
func (p *Prompter) WaitForEnter(message string) error {
	fmt.Fprint(p.out, message)
	_, err := p.readLine()
	return err
}

// Confirm repeats question until the answer is yes/y or no/n, case
// insensitively.
func (p *Prompter) Confirm(question string) (bool, error) {
	for {
		fmt.Fprint(p.out, question)
		line, err := p.readLine()
		if err != nil {
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "yes", "y":
			return true, nil
		case "no", "n":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please enter 'yes'/'y' or 'no'/'n'.")
	}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return line, nil
}
