package commands

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
)

const shellPrompt = "kaizen> "

// ShellCmd runs client commands line by line against one loaded document
// while autosave is running.
type ShellCmd struct{}

type shellCLI struct {
	Commands `embed:""`

	Exit ExitCmd `cmd:"" aliases:"quit" help:"Leave the shell"`
}

// ExitCmd ends the shell session.
type ExitCmd struct{}

func (c *ExitCmd) Run(sess *shellSession) error {
	sess.done = true
	return nil
}

type shellSession struct {
	done bool
}

// exitSignal is raised by kong's exit hook after --help so the shell keeps going.
type exitSignal struct{ code int }

func (c *ShellCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	if err := s.StartAutosave(ctx); err != nil {
		return err
	}
	defer func() { _ = s.StopAutosave() }()

	adapter := ferrors.NewCLIErrorAdapter(root.Verbose, g.logger())
	sess := &shellSession{}
	fmt.Fprintf(g.Out, "%s: %s. Type 'help' for commands, 'exit' to leave.\n",
		s.Snapshot().Meta.ProjectName, formatProgress(s.Snapshot().Progress()))

	scanner := bufio.NewScanner(g.In)
	for !sess.done {
		fmt.Fprint(g.Out, shellPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(g.Out)
			break
		}
		args, err := splitLine(scanner.Text())
		if err != nil {
			fmt.Fprintln(g.Out, adapter.FormatError(err))
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "help" {
			args = append(args[1:], "--help")
		}
		if err := runShellLine(g, root, sess, args); err != nil {
			fmt.Fprintln(g.Out, adapter.FormatError(err))
		}
	}
	if err := scanner.Err(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "read shell input").Build()
	}
	return s.Save(ctx)
}

func runShellLine(g *Global, root *CLI, sess *shellSession, args []string) (err error) {
	var grammar shellCLI
	parser, err := kong.New(&grammar,
		kong.Name(""),
		kong.Writers(g.Out, g.Out),
		kong.Exit(func(code int) { panic(exitSignal{code}) }),
		kong.Bind(g, root, sess),
	)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "build shell parser").Build()
	}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(exitSignal); !ok {
				panic(r)
			}
			err = nil
		}
	}()
	kctx, err := parser.Parse(args)
	if err != nil {
		return ferrors.ValidationError(err.Error()).WithCause(err).Build()
	}
	return kctx.Run()
}

// splitLine breaks a shell line into words. Single and double quotes group
// words; a backslash escapes the next character outside single quotes.
func splitLine(line string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 || escaped {
		return nil, ferrors.ValidationError("unterminated quote or escape").Build()
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}
