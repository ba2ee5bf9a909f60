package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meshy-studio/meshy/pkg/assets"
	"github.com/meshy-studio/meshy/pkg/params"
	"github.com/meshy-studio/meshy/pkg/render/og"
)

// assetsCommand creates the assets command for managing OG templates.
func (c *CLI) assetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage Open Graph template images",
	}

	cmd.AddCommand(c.assetsGenerateCommand())
	cmd.AddCommand(c.assetsCheckCommand())

	return cmd
}

func (c *CLI) assetsGenerateCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Draw the stock OG templates into the assets directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if dir == "" {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				dir = cfg.Assets.Dir
			}

			spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Drawing templates...")
			spinner.Start()
			paths, err := og.GenerateTemplates(ctx, dir)
			spinner.Stop()
			if err != nil {
				return err
			}

			printSuccess(out, "Generated %d templates", len(paths))
			for _, p := range paths {
				printFile(out, p)
			}
			printNextStep(out, "Verify with", "meshy assets check")
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default assets.dir)")
	return cmd
}

func (c *CLI) assetsCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that every OG template decodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := assets.NewStore(cfg.Assets.Dir, len(params.Templates)*2)
			if err != nil {
				return err
			}

			var missing int
			for _, t := range params.Templates {
				for _, dark := range []bool{false, true} {
					name := og.TemplateFile(t, dark)
					img, err := store.Template(ctx, name)
					if err != nil {
						printWarning(out, "%s: %v", name, err)
						missing++
						continue
					}
					b := img.Bounds()
					printKeyValue(out, name, fmt.Sprintf("%dx%d", b.Dx(), b.Dy()))
				}
			}
			if missing > 0 {
				printNextStep(out, "Draw the stock templates with", "meshy assets generate")
				return fmt.Errorf("%d of %d templates unusable in %s", missing, len(params.Templates)*2, store.Dir())
			}
			printSuccess(out, "All templates present in %s", store.Dir())
			return nil
		},
	}
}
