package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/quickprintz/storefront/internal/pricing"
	"github.com/quickprintz/storefront/internal/service"

	"github.com/spf13/cobra"
)

func newQuoteCommand() *cobra.Command {
	var cfg pricing.TieredConfig
	var family string
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "按阶梯价格计算报价",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Family = pricing.Family(family)
			return printQuote(cmd.OutOrStdout(), cfg)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&family, "family", string(pricing.FamilyMylarBags), "产品族: mylar-bags / stickers / boxes / design")
	flags.IntVar(&cfg.Quantity, "quantity", 100, "数量")
	flags.StringVar(&cfg.Size, "size", "medium", "尺寸")
	flags.StringVar(&cfg.Finish, "finish", "matte", "表面工艺")
	flags.BoolVar(&cfg.Rush, "rush", false, "加急")
	return cmd
}

func newQuoteBagCommand() *cobra.Command {
	var cfg pricing.BagConfig
	cmd := &cobra.Command{
		Use:   "quote-bag",
		Short: "按印刷袋配置器计算报价",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printQuote(cmd.OutOrStdout(), cfg)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&cfg.BagSize, "bag-size", "", "袋型 ID")
	flags.IntVar(&cfg.Quantity, "quantity", 100, "数量")
	flags.StringVar(&cfg.Color, "color", "", "袋身颜色")
	flags.StringVar(&cfg.Finish, "finish", "", "表面工艺")
	flags.StringVar(&cfg.Coverage, "coverage", pricing.CoverageFront, "印刷面: front / both")
	flags.BoolVar(&cfg.SpotUV, "spot-uv", false, "局部 UV")
	flags.BoolVar(&cfg.UVGloss, "uv-gloss", false, "UV 亮油")
	flags.BoolVar(&cfg.CustomLogo, "custom-logo", false, "定制 Logo")
	_ = cmd.MarkFlagRequired("bag-size")
	return cmd
}

func printQuote(w io.Writer, cfg pricing.Configuration) error {
	res, err := service.Quote(cfg)
	if err != nil {
		return err
	}
	out := map[string]interface{}{"quote": res}
	if res.TotalPrice.IsPositive() {
		if item, err := pricing.LineItem(cfg, res); err == nil {
			out["item"] = item
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
