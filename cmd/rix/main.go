package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	rix "github.com/rixlang/rix"
)

const (
	appName     = "rix"
	historyFile = ".rix_history"
	promptMain  = "==> "
	promptCont  = "... "
)

var banner = fmt.Sprintf("rix %s REPL (full-form input)\nCtrl+C interrupts evaluation, Ctrl+D exits. Type :quit to exit.", rix.Version)

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }
func blue(s string) string  { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch cmd := os.Args[1]; cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(rix.Version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`rix %s

Usage:
  %s run <file.rix>    Evaluate a file of full-form expressions, one per line.
  %s repl              Start the REPL.
  %s version           Print the version.

`, rix.Version, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.rix>\n", appName)
		return 2
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, args[0], err)
		return 1
	}

	s := rix.NewSession()
	installInterrupt(s)

	for _, line := range strings.Split(string(src), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out, err := rix.EvalString(line, s)
		drainMessages(s)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return 1
		}
		if !out.SameQ(rix.SymbolNull) {
			fmt.Println(out.String())
		}
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(_ []string) int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	s := rix.NewSession()
	installInterrupt(s)

	for {
		code, ok := readBalanced(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return 0
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if strings.EqualFold(trimmed, ":quit") {
				return 0
			}
			fmt.Println("unknown command. Type :quit to exit.")
			continue
		}

		out, err := rix.EvalString(code, s)
		drainMessages(s)
		s.ClearStop()
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		if !out.SameQ(rix.SymbolNull) {
			fmt.Println(blue(out.String()))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// installInterrupt maps SIGINT/SIGTERM onto a session stop request so a
// runaway evaluation unwinds to $Aborted instead of killing the process.
func installInterrupt(s *rix.Session) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range sigc {
			s.RequestStop()
		}
	}()
}

func drainMessages(s *rix.Session) {
	for _, m := range s.Messages() {
		fmt.Fprintln(os.Stderr, green(m.String()))
	}
	s.ClearMessages()
}

// readBalanced keeps prompting until brackets and quotes balance, so a
// multi-line full form can be typed incrementally.
func readBalanced(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if bracketDepth(b.String()) <= 0 {
			return b.String(), true
		}
	}
}

// bracketDepth counts unclosed brackets outside string literals; an
// unterminated string also counts as open.
func bracketDepth(src string) int {
	depth := 0
	inStr := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		if inStr {
			switch c {
			case '\\':
				i++
			case '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '[', '{', '(':
			depth++
		case ']', '}', ')':
			depth--
		}
	}
	if inStr {
		depth++
	}
	return depth
}
