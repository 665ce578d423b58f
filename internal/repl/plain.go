package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const defaultHistoryFile = ".mython_history"

// RunPlain drives the line-oriented REPL for dumb terminals and pipes.
// History is persisted across sessions.
func RunPlain(version, historyFile string) error {
	fmt.Printf("Mython %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.\n", version)

	if historyFile == "" {
		home, _ := os.UserHomeDir()
		historyFile = filepath.Join(home, defaultHistoryFile)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(historyFile); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	s := newSession()
	for {
		prompt := promptMain
		if s.continuing() {
			prompt = promptCont
		}

		input, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			s.pending = nil
			continue
		}
		if err != nil {
			return err
		}

		if strings.TrimSpace(input) == ":quit" {
			return nil
		}
		if strings.TrimSpace(input) != "" {
			ln.AppendHistory(input)
		}

		output, isErr, done := s.feed(input)
		if !done {
			continue
		}
		if output == "" {
			continue
		}
		if isErr {
			fmt.Fprintln(os.Stderr, "\x1b[31m"+output+"\x1b[0m")
		} else {
			fmt.Println(output)
		}
	}
}
