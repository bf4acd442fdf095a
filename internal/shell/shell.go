package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Shell is the line-oriented interactive loop.
type Shell struct {
	d   *Dispatcher
	in  io.Reader
	out io.Writer
}

// New returns a shell reading commands from in. Output goes wherever the
// dispatcher writes, and every log line of the session carries a session
// id.
func New(d *Dispatcher, in io.Reader, out io.Writer) *Shell {
	d.log = d.log.With("session", uuid.NewString())
	d.SetOutput(out)
	return &Shell{d: d, in: in, out: out}
}

// Run prints the banner and executes commands until exit, end of input or
// cancellation of ctx. All three end the session normally.
func (s *Shell) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	p := &linePrompter{
		ctx:   ctx,
		lines: readLines(s.in, done),
		out:   s.out,
		d:     s.d,
	}

	s.banner()
	s.d.log.Info("session started", "location", s.d.store.Location(), "contacts", s.d.store.Len())
	for {
		line, err := p.Ask("\n> ")
		if err != nil {
			break
		}
		if err := s.d.Execute(line, p); errors.Is(err, ErrQuit) {
			break
		}
	}
	fmt.Fprintln(s.out, "\nGoodbye.")
	s.d.log.Info("session ended")
	return nil
}

func (s *Shell) banner() {
	th := s.d.theme
	fmt.Fprintln(s.out, th.Banner.Render("=== PHONE BOOK ==="))
	fmt.Fprintln(s.out, th.Help.Render("Commands: "+strings.Join(Commands, ", ")))
}

// linePrompter answers prompts from a stream of lines.
type linePrompter struct {
	ctx   context.Context
	lines <-chan string
	out   io.Writer
	d     *Dispatcher
}

func (p *linePrompter) Ask(label string) (string, error) {
	fmt.Fprint(p.out, p.d.theme.Prompt.Render(label))
	select {
	case <-p.ctx.Done():
		return "", ErrQuit
	case line, ok := <-p.lines:
		if !ok {
			return "", ErrQuit
		}
		return line, nil
	}
}

// readLines feeds r line by line into the returned channel, which is
// closed at end of input. The reader runs on its own goroutine so that a
// blocked read never delays shutdown.
func readLines(r io.Reader, done <-chan struct{}) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadString('\n')
			if line != "" || err == nil {
				select {
				case ch <- strings.TrimRight(line, "\r\n"):
				case <-done:
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return ch
}

// Answers is a Prompter replaying fixed answers, used for one-shot
// commands. Once the answers run out it reports ErrQuit.
type Answers []string

func (a *Answers) Ask(string) (string, error) {
	if len(*a) == 0 {
		return "", ErrQuit
	}
	v := (*a)[0]
	*a = (*a)[1:]
	return v, nil
}
