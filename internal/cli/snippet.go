package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meshy-studio/meshy/pkg/params"
	"github.com/meshy-studio/meshy/pkg/pipeline"
	"github.com/meshy-studio/meshy/pkg/snippet"
)

// snippetCommand prints framework metadata code for an OG card.
func (c *CLI) snippetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "snippet <sveltekit|nextjs|tanstack> [key=value...]",
		Short:     "Print the page metadata snippet for an OG card",
		Example:   `  meshy snippet nextjs template=mesh 'title=Launch week'`,
		ValidArgs: snippetFlavors(),
		Args:      cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flavor, err := snippet.ParseFlavor(args[0])
			if err != nil {
				return err
			}
			query, err := buildQuery(args[1:])
			if err != nil {
				return err
			}
			v, err := params.ParseQuery(query)
			if err != nil {
				return err
			}
			p, err := params.DecodeOG(v)
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			out, err := snippet.Generate(flavor, p, cfg.PublicURL)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	return cmd
}

// urlCommand prints the API URL that serves an image.
func (c *CLI) urlCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "url <chart|mesh|og> [seed] [key=value...]",
		Short:   "Print the API URL for an image",
		Example: `  meshy url mesh alice@example.com text=AL`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := pipeline.ParseKind(args[0])
			if err != nil {
				return err
			}
			args = args[1:]
			var seed string
			if kind == pipeline.KindMesh && len(args) > 0 {
				seed, args = args[0], args[1:]
			}
			query, err := buildQuery(args)
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			u, err := snippet.PreviewURL(cfg.PublicURL, string(kind), seed, query)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func snippetFlavors() []string {
	names := make([]string, len(snippet.Flavors))
	for i, f := range snippet.Flavors {
		names[i] = string(f)
	}
	return names
}
