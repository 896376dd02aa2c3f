package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/guidepress"
	"github.com/eringen/guidepress/schema"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report guides whose structured data is invalid or needs review",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := guidepress.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		store, err := guidepress.NewStore(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		guides, err := store.ListAllGuides()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		problems := 0
		for _, g := range guides {
			crumbs, err := guidepress.ResolveBreadcrumbs(cfg, g)
			switch {
			case err != nil:
				fmt.Fprintf(out, "%s: %v\n", g.Slug, err)
				problems++
			case schema.NeedsReview(crumbs):
				fmt.Fprintf(out, "%s: breadcrumb trail only contains the site root\n", g.Slug)
				problems++
			}
			if _, err := schema.Build(guidepress.GuidePageData(cfg, g, crumbs)); err != nil {
				fmt.Fprintf(out, "%s: %v\n", g.Slug, err)
				problems++
			}
		}
		fmt.Fprintf(out, "%d guides checked, %d problems\n", len(guides), problems)
		if problems > 0 {
			return fmt.Errorf("%d structured-data problems", problems)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
