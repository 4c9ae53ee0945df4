package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const shellPrompt = "modswap"

// shell is the interactive loop. It keeps the set list it last printed so
// that numbers typed by the user refer to what they saw.
type shell struct {
	app     *app
	out     *renderer
	current string
	names   []string
}

func newShell(a *app) *shell {
	return &shell{app: a, out: newRenderer(a.stdout)}
}

func (s *shell) run() error {
	current, err := s.app.mgr.Load()
	if err != nil {
		return err
	}
	s.current = current
	if err := s.refresh(); err != nil {
		return err
	}

	s.out.current(s.current)
	fmt.Fprintln(s.app.stdout)
	s.out.shellHelp()
	fmt.Fprintln(s.app.stdout)
	s.out.sets(s.names, s.current)
	fmt.Fprintln(s.app.stdout)

	loopErr := s.loop()
	if err := s.app.mgr.Save(s.current); err != nil {
		return errors.Join(loopErr, err)
	}
	return loopErr
}

func (s *shell) loop() error {
	for {
		line, err := s.app.prompter.Prompt(shellPrompt)
		if err != nil {
			if errors.Is(err, ErrPromptCancelled) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "exit":
			return nil
		case "swap":
			s.swap(fields[1:])
		case "list":
			if err := s.refresh(); err != nil {
				s.out.warn(err.Error())
				continue
			}
			s.out.sets(s.names, s.current)
		case "status":
			st, err := s.app.mgr.Status(s.current)
			if err != nil {
				s.out.warn(err.Error())
				continue
			}
			s.out.status(s.app.mgr.Root(), st)
		case "recover":
			s.recoverSwap()
		case "help":
			s.out.shellHelp()
		default:
			s.out.warn(fmt.Sprintf("Unknown command: %s", fields[0]))
		}
	}
}

func (s *shell) refresh() error {
	names, err := s.app.mgr.Sets()
	if err != nil {
		return err
	}
	s.names = names
	return nil
}

func (s *shell) swap(args []string) {
	if len(args) != 1 {
		s.out.warn("There needs to be two arguments!")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		s.out.warn("First argument: This is not a number")
		return
	}
	if n < 1 || n > len(s.names) {
		s.out.warn(fmt.Sprintf("There is no configuration (%d)", n))
		return
	}

	next, err := s.app.mgr.Swap(s.current, s.names[n-1])
	if err != nil {
		s.out.warn(err.Error())
	}
	s.current = next
	s.out.current(s.current)
}

func (s *shell) recoverSwap() {
	restored, ok, err := s.app.mgr.Recover(s.current)
	if err != nil {
		s.out.warn(err.Error())
		return
	}
	if !ok {
		fmt.Fprintln(s.app.stdout, "No interrupted swap to recover.")
		return
	}
	s.current = restored
	s.out.current(s.current)
}
