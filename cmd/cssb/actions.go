package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cssb/config"
	"cssb/css"
	"cssb/objects"
	"cssb/state"
)

// printed is what json output format emits for every selector.
type printed struct {
	Input    string   `json:"input,omitempty"`
	Selector string   `json:"selector"`
	Node     css.Node `json:"node"`
}

// envelope is printed read back, node is mandatory.
type envelope struct {
	Input    string    `json:"input,omitempty"`
	Selector string    `json:"selector"`
	Node     *css.Node `json:"node"`
}

var errNoDescription = errors.New("no selector description")

// readDescriptions accepts both json output of this program (one envelope
// per line) and bare selector descriptions.
func readDescriptions(text string) ([]css.Node, error) {
	envs, envErr := objects.FromJSONList[envelope](text)
	if envErr == nil {
		nodes := make([]css.Node, 0, len(envs))
		for _, e := range envs {
			if e.Node == nil {
				envErr = errors.New("selector envelope without node")
				break
			}
			nodes = append(nodes, *e.Node)
		}
		if envErr == nil {
			if len(nodes) == 0 {
				return nil, errNoDescription
			}
			return nodes, nil
		}
	}

	nodes, err := objects.FromJSONList[css.Node](text)
	if err != nil {
		return nil, multierr.Combine(err, envErr)
	}
	if len(nodes) == 0 {
		return nil, errNoDescription
	}
	return nodes, nil
}

// printSelector writes selector to program output using configured format.
// Source is echoed when requested by configuration and not empty.
func printSelector(ctx context.Context, cmd *cli.Command, source string, sel css.Selector) error {
	env := state.EnvFromContext(ctx)

	text, err := sel.Stringify()
	if err != nil {
		return err
	}
	env.Rpt.Record(source, text, nil)
	echo := env.Cfg != nil && env.Cfg.Output.Echo && len(source) > 0

	out := cmd.Root().Writer
	switch env.Format() {
	case config.OutputFmtJson:
		node, err := css.Describe(sel)
		if err != nil {
			return err
		}
		p := printed{Selector: text, Node: node}
		if echo {
			p.Input = source
		}
		data, err := objects.ToJSON(p)
		if err != nil {
			return fmt.Errorf("unable to encode selector: %w", err)
		}
		_, err = fmt.Fprintln(out, data)
		return err
	case config.OutputFmtTree:
		node, err := css.Describe(sel)
		if err != nil {
			return err
		}
		if echo {
			text = source + " => " + text
		}
		_, err = fmt.Fprintf(out, "%s\n%s", text, node.Tree())
		return err
	default:
		if echo {
			_, err = fmt.Fprintf(out, "%s => %s\n", source, text)
		} else {
			_, err = fmt.Fprintln(out, text)
		}
		return err
	}
}

var errNoArguments = errors.New("nothing to do, no arguments")

func buildSelector(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() == 0 {
		return errNoArguments
	}

	var sel css.Compound
	for _, arg := range cmd.Args().Slice() {
		name, value, found := strings.Cut(arg, "=")
		if !found {
			return fmt.Errorf("malformed part '%s', expected KIND=VALUE", arg)
		}
		kind, err := css.LookupKind(name)
		if err != nil {
			return fmt.Errorf("malformed part '%s': %w", arg, err)
		}
		sel = sel.Add(kind, value)
		if err := sel.Err(); err != nil {
			return fmt.Errorf("unable to build selector: %w", err)
		}
	}
	env.Log.Debug("Selector built", zap.Int("parts", len(sel.Parts())))

	return printSelector(ctx, cmd, strings.Join(cmd.Args().Slice(), " "), sel)
}

func parseSelectors(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() == 0 {
		return errNoArguments
	}

	var count int
	for _, arg := range cmd.Args().Slice() {
		sels, er := env.Parser().ParseList(arg)
		if er != nil {
			for _, e := range multierr.Errors(er) {
				env.Rpt.Record(arg, "", e)
			}
			err = multierr.Append(err, fmt.Errorf("selector list '%s': %w", arg, er))
		}
		for _, sel := range sels {
			if er := printSelector(ctx, cmd, arg, sel); er != nil {
				return multierr.Append(err, er)
			}
			count++
		}
	}
	env.Log.Debug("Selectors parsed", zap.Int("valid", count), zap.Int("failed", len(multierr.Errors(err))))
	return err
}

func combineSelectors(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() != 3 {
		return fmt.Errorf("expected LEFT COMBINATOR RIGHT, got %d argument(s)", cmd.Args().Len())
	}

	left, err := env.Parser().Parse(cmd.Args().Get(0))
	if err != nil {
		return fmt.Errorf("left selector: %w", err)
	}
	right, err := env.Parser().Parse(cmd.Args().Get(2))
	if err != nil {
		return fmt.Errorf("right selector: %w", err)
	}
	return printSelector(ctx, cmd, strings.Join(cmd.Args().Slice(), " "), css.Combine(left, cmd.Args().Get(1), right))
}

func decodeSelector(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var (
		data []byte
		err  error
	)
	if fname := cmd.Args().Get(0); len(fname) > 0 {
		data, err = os.ReadFile(fname)
	} else {
		data, err = io.ReadAll(cmd.Root().Reader)
	}
	if err != nil {
		return fmt.Errorf("unable to read selector description: %w", err)
	}

	nodes, err := readDescriptions(string(data))
	if err != nil {
		return fmt.Errorf("unable to decode selector description: %w", err)
	}
	for i, node := range nodes {
		sel, err := css.Build(node)
		if err != nil {
			return fmt.Errorf("unable to rebuild selector #%d: %w", i+1, err)
		}
		if err := printSelector(ctx, cmd, "", sel); err != nil {
			return err
		}
	}
	env.Log.Debug("Selectors decoded", zap.Int("count", len(nodes)))
	return nil
}

func outputRectangle(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() != 2 {
		return fmt.Errorf("expected WIDTH HEIGHT, got %d argument(s)", cmd.Args().Len())
	}
	var dims [2]float64
	for i := range dims {
		v, err := strconv.ParseFloat(cmd.Args().Get(i), 64)
		if err != nil {
			return fmt.Errorf("bad rectangle dimension: %w", err)
		}
		dims[i] = v
	}
	r := objects.NewRectangle(dims[0], dims[1])

	out := cmd.Root().Writer
	if env.Format() == config.OutputFmtJson {
		data, err := objects.ToJSON(struct {
			objects.Rectangle
			Area float64 `json:"area"`
		}{r, r.Area()})
		if err != nil {
			return fmt.Errorf("unable to encode rectangle: %w", err)
		}
		_, err = fmt.Fprintln(out, data)
		return err
	}
	_, err := fmt.Fprintf(out, "%gx%g area %g\n", r.Width, r.Height, r.Area())
	return err
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		state string
	)

	out := cmd.Root().Writer
	if len(fname) > 0 {
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer f.Close()
		out = f
	}

	if cmd.Bool("default") {
		state = "default"
		data, err = config.Prepare()
	} else {
		state = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Debug("Outputing configuration", zap.String("state", state), zap.String("file", fname))

	_, err = out.Write(data)
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
