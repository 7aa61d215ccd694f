package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        bool
		wantErr     error
		wantRetries int
	}{
		{name: "yes", input: "yes\n", want: true},
		{name: "short yes", input: "y\n", want: true},
		{name: "upper case with spaces", input: "  YES \n", want: true},
		{name: "no", input: "no\n", want: false},
		{name: "short no", input: "N\n", want: false},
		{name: "retries until valid", input: "maybe\n\nsure\ny\n", want: true, wantRetries: 3},
		{name: "answer without newline", input: "no", want: false},
		{name: "input ends", input: "what\n", wantErr: ErrNoInput, wantRetries: 1},
		{name: "empty input", input: "", wantErr: ErrNoInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := New(strings.NewReader(tt.input), &out)

			got, err := p.Confirm("Do you know what you are doing (yes/no)? ")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Confirm() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
			if retries := strings.Count(out.String(), "Please enter 'yes'/'y' or 'no'/'n'."); retries != tt.wantRetries {
				t.Errorf("retry hint printed %d times, want %d", retries, tt.wantRetries)
			}
		})
	}
}

func TestWaitForEnter(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("\nyes\n"), &out)

	if err := p.WaitForEnter("Proceed to Delete? Hit Enter to Continue: "); err != nil {
		t.Fatalf("WaitForEnter() error = %v", err)
	}
	if out.String() != "Proceed to Delete? Hit Enter to Continue: " {
		t.Errorf("output = %q", out.String())
	}

	// The next prompt reads from where the previous one stopped
	ok, err := p.Confirm("? ")
	if err != nil || !ok {
		t.Errorf("Confirm() = %v, %v; want true, nil", ok, err)
	}
}

func TestWaitForEnterNoInput(t *testing.T) {
	p := New(strings.NewReader(""), &bytes.Buffer{})

	if err := p.WaitForEnter("Proceed? "); !errors.Is(err, ErrNoInput) {
		t.Errorf("WaitForEnter() error = %v, want ErrNoInput", err)
	}
}
