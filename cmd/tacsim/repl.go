package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"tacsim/internal/eval"
	"tacsim/internal/tac"
)

const (
	replHistoryFile = ".tacsim_history"
	replPrompt      = "tac> "
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Evaluate TAC lines interactively",
	Long: `Start an interactive session. Assignments (x = a + 1) update the
session's variables; any other line is evaluated and printed.
Commands: :vars, :reset, :quit.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

// replSession holds the variables of one interactive session.
type replSession struct {
	env eval.Env
}

func newReplSession() *replSession {
	return &replSession{env: make(eval.Env)}
}

var errReplQuit = errors.New("quit")

// exec handles one input line and returns what should be printed.
func (s *replSession) exec(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	if strings.HasPrefix(line, ":") {
		return s.command(line)
	}

	prog := tac.Classify(line, tac.Options{})
	if len(prog.Instructions) == 1 {
		in := prog.Instructions[0]
		switch in.Op {
		case tac.OpAssign:
			v, ok := eval.Evaluate(in.Expr, s.env)
			if !ok {
				return "", fmt.Errorf("%q is not computable", in.Expr)
			}
			s.env[in.Var] = v
			return in.Var + " = " + v.String(), nil
		case tac.OpReturn:
			line = in.Expr
		}
	}

	v, ok := eval.Evaluate(line, s.env)
	if !ok {
		return "", fmt.Errorf("%q is not computable", line)
	}
	return v.String(), nil
}

func (s *replSession) command(line string) (string, error) {
	switch strings.ToLower(line) {
	case ":quit", ":q":
		return "", errReplQuit
	case ":reset":
		clear(s.env)
		return "", nil
	case ":vars":
		names := make([]string, 0, len(s.env))
		for name := range s.env {
			names = append(names, name)
		}
		slices.Sort(names)
		var b strings.Builder
		for i, name := range names {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(name + " = " + s.env[name].String())
		}
		return b.String(), nil
	default:
		return "", fmt.Errorf("unknown command %s (try :vars, :reset or :quit)", line)
	}
}

func runRepl(cmd *cobra.Command, _ []string) error {
	colorize, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}
	red := color.New(color.FgRed)
	if colorize {
		red.EnableColor()
	} else {
		red.DisableColor()
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	var histPath string
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, replHistoryFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	out := cmd.OutOrStdout()
	session := newReplSession()
	for {
		line, err := ln.Prompt(replPrompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return err
		}

		text, err := session.exec(line)
		if errors.Is(err, errReplQuit) {
			return nil
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), red.Sprint(err.Error()))
			continue
		}
		if text != "" {
			fmt.Fprintln(out, text)
		}
	}
}
