package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beanload/parser"
)

// DoctorCmd provides doctor utilities for debugging beancount files.
type DoctorCmd struct {
	Lex LexCmd `cmd:"" help:"Show lexical tokens from a beancount file."`
}

// LexCmd shows lexical tokens from a beancount file.
type LexCmd struct {
	File string `help:"Beancount input filename (use '-' for stdin)." arg:"" optional:"" default:"-"`
}

func (cmd *LexCmd) Run(ctx *kong.Context, globals *Globals) error {
	name, content, err := readInput(cmd.File, os.Stdin)
	if err != nil {
		return err
	}

	// Format: TYPE line:col "content"
	for _, token := range parser.NewLexer(content, name).ScanAll() {
		if token.Type == parser.EOF {
			continue
		}
		_, _ = fmt.Fprintf(ctx.Stdout, "%-10s %d:%d    %q\n",
			token.Type.String(),
			token.Line,
			token.Column,
			token.String(content))
	}

	return nil
}

// readInput reads a file, or stdin for "-".
func readInput(name string, stdin io.Reader) (string, []byte, error) {
	if name == "-" || name == "" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return "<stdin>", content, nil
	}

	content, err := os.ReadFile(name)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}
	return name, content, nil
}
