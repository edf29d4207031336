package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/quickprintz/storefront/internal/assets"
	"github.com/quickprintz/storefront/internal/provider"

	"github.com/spf13/cobra"
)

func newDesignsCommand() *cobra.Command {
	var query assets.Query
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "designs",
		Short: "列举对象存储中的设计素材",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			bucket, closeBucket, err := provider.NewBucket(ctx, cfg.Storage)
			if err != nil {
				return err
			}
			if closeBucket != nil {
				defer func() { _ = closeBucket() }()
			}

			list, err := provider.NewAssetLister(bucket, cfg.Storage).List(ctx)
			if err != nil {
				return err
			}
			matched := assets.Filter(list, query)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tCATEGORY\tSTYLE\tSIZE")
			for _, a := range matched {
				traits := assets.Traits(a.Name)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Path, traits.Category, traits.Style, assets.FormatFileSize(a.Size))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d designs\n", len(matched), len(list))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&query.Search, "search", "", "按名称、路径或标签搜索")
	flags.StringVar(&query.Category, "category", "", "分类")
	flags.StringVar(&query.Style, "style", "", "风格")
	flags.StringVar(&query.Color, "color", "", "颜色")
	flags.DurationVar(&timeout, "timeout", 2*time.Minute, "列举超时")
	return cmd
}
