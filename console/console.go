// Package console drives an interpreter from a terminal: it prints output
// as the program produces it and prompts for a line whenever the program
// waits for input.
package console

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/chzyer/readline"
	"github.com/krehermann/intcode/config"
	"github.com/krehermann/intcode/vm"
	"go.uber.org/zap"
)

const quitCommand = ":quit"

// LineReader is satisfied by *readline.Instance.
type LineReader interface {
	Readline() (string, error)
}

// NewReadline builds a terminal line reader from the console config.
func NewReadline(cfg config.Console) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:      cfg.Prompt,
		HistoryFile: cfg.HistoryFile,
	})
}

type Console struct {
	interp *vm.Interpreter
	in     LineReader
	out    io.Writer
	ascii  bool

	logger *zap.Logger
}

type ConsoleOpt func(*Console) *Console

// WithASCII renders output as text and sends each input line as text.
func WithASCII(ascii bool) ConsoleOpt {
	return func(c *Console) *Console {
		c.ascii = ascii
		return c
	}
}

func WithLogger(l *zap.Logger) ConsoleOpt {
	return func(c *Console) *Console {
		c.logger = l
		return c
	}
}

func New(interp *vm.Interpreter, in LineReader, out io.Writer, opts ...ConsoleOpt) *Console {
	c := &Console{
		interp: interp,
		in:     in,
		out:    out,
		logger: zap.L(),
	}
	for _, opt := range opts {
		c = opt(c)
	}
	c.logger = c.logger.Named("console")
	return c
}

// Run drives the program until it halts, fails, or the input ends. A
// failed program is returned as an error; running out of input is not.
func (c *Console) Run() error {
	for {
		switch c.interp.State() {
		case vm.StateInitial:
			c.interp.Run()

		case vm.StateWaitingForInput:
			if err := c.flush(); err != nil {
				return err
			}
			line, err := c.in.Readline()
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				fmt.Fprintln(c.out, "input closed, program still waiting")
				return nil
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			if strings.TrimSpace(line) == quitCommand {
				return nil
			}

			values, err := c.parse(line)
			if err != nil {
				fmt.Fprintf(c.out, "bad input: %v\n", err)
				continue
			}
			c.logger.Debug("input", zap.Int64s("values", values))
			c.interp.RunWithInput(values...)

		case vm.StateHalted:
			if err := c.flush(); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "halted after %d steps\n", c.interp.Steps())
			return nil

		case vm.StateFailed:
			return fmt.Errorf("program failed: %w", c.interp.Err())
		}
	}
}

func (c *Console) parse(line string) ([]int64, error) {
	if c.ascii {
		return vm.ASCIIInput(line), nil
	}
	return ParseValues(line)
}

// ParseValues parses integers separated by commas or whitespace.
func ParseValues(line string) ([]int64, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	values := make([]int64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func (c *Console) flush() error {
	out, err := c.interp.DrainOutput()
	if err != nil {
		return err
	}
	if len(out) == 0 {
		return nil
	}
	return WriteOutput(c.out, out, c.ascii)
}

// WriteOutput prints output values, as text when ascii is set. Values that
// are not ascii are printed as numbers on their own lines.
func WriteOutput(w io.Writer, out []int64, ascii bool) error {
	if !ascii {
		_, err := fmt.Fprintln(w, joinValues(out))
		return err
	}
	for len(out) > 0 {
		text, rest := vm.SplitASCIIOutput(out)
		if _, err := io.WriteString(w, text); err != nil {
			return err
		}
		if len(rest) == 0 {
			break
		}
		if _, err := fmt.Fprintln(w, rest[0]); err != nil {
			return err
		}
		out = rest[1:]
	}
	return nil
}

func joinValues(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}
