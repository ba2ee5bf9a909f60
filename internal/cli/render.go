package cli

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshy-studio/meshy/pkg/errors"
	"github.com/meshy-studio/meshy/pkg/pipeline"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output  string
	noCache bool
	svg     bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render <chart|mesh|og> [seed] [key=value...]",
		Short: "Render one image to a JPEG file",
		Long: `Render draws a chart, mesh avatar or Open Graph card with the same
parameters the HTTP API takes, written as key=value pairs.

Mesh renders take the seed as the first argument after the kind. With
--svg the vector drawing is written instead; mesh effects only apply to
the JPEG.`,
		Example: `  meshy render chart 'data[0][x]=Jan' 'data[0][y]=12' 'data[1][x]=Feb' 'data[1][y]=18'
  meshy render mesh alice@example.com text=AL -o alice.jpg
  meshy render og template=grid darkMode=true 'title=Hello world'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <kind>.jpg or mesh-<seed>.jpg)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "skip the on-disk render cache")
	cmd.Flags().BoolVar(&opts.svg, "svg", false, "write the vector drawing instead of a JPEG (chart and mesh only)")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, args []string, opts renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	out := cmd.OutOrStdout()

	kind, err := pipeline.ParseKind(args[0])
	if err != nil {
		return err
	}
	args = args[1:]

	var seed string
	if kind == pipeline.KindMesh {
		if len(args) == 0 || strings.Contains(args[0], "=") {
			return errors.New(errors.ErrCodeInvalidSeed, "mesh renders need a seed argument")
		}
		seed, args = args[0], args[1:]
	}

	query, err := buildQuery(args)
	if err != nil {
		return err
	}

	if opts.svg {
		return writeVector(cmd, kind, seed, query, opts.output)
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	logger.Debug("rendering", "kind", kind, "seed", seed, "query", query)
	prog := newProgress(logger)
	res, err := runner.Query(ctx, kind, seed, query)
	if err != nil {
		return err
	}
	prog.done("Rendered "+string(kind), "cached", res.Cached)

	path := opts.output
	if path == "" {
		path = defaultOutput(kind, seed)
	}
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printSuccess(out, "Rendered %s", kind)
	printFile(out, path)
	printRenderStats(out, len(res.Data), res.Duration, res.Cached)
	return nil
}

func writeVector(cmd *cobra.Command, kind pipeline.Kind, seed, query, path string) error {
	data, err := pipeline.Vector(kind, seed, query)
	if err != nil {
		return err
	}
	if path == "" {
		path = strings.TrimSuffix(defaultOutput(kind, seed), ".jpg") + ".svg"
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	out := cmd.OutOrStdout()
	printSuccess(out, "Wrote %s drawing", kind)
	printFile(out, path)
	return nil
}

// buildQuery encodes key=value arguments as a query string. Keys keep
// their bracket syntax and repeated keys keep their order.
func buildQuery(args []string) (string, error) {
	pairs := make([]string, 0, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return "", errors.New(errors.ErrCodeInvalidInput, "argument %q is not key=value", arg)
		}
		pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(v))
	}
	return strings.Join(pairs, "&"), nil
}

func defaultOutput(kind pipeline.Kind, seed string) string {
	if kind != pipeline.KindMesh {
		return string(kind) + ".jpg"
	}
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, seed)
	return "mesh-" + name + ".jpg"
}
