package cmd

import (
	"encoding/json"
	"math"
	"strings"

	"lending/core"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

func printJSON(cmd *cobra.Command, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}

	cmd.Println(string(data))
}

// parseAmount "max" means the largest amount the operation accepts
func parseAmount(s string) uint64 {
	if strings.EqualFold(s, "max") {
		return math.MaxUint64
	}

	v, err := cast.ToUint64E(s)
	if err != nil {
		panic("invalid amount " + s)
	}

	return v
}

func requireFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil || v == "" {
		panic("invalid " + name)
	}

	return v
}

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "manage lending markets",
}

var initMarketCmd = &cobra.Command{
	Use:   "init",
	Short: "create a lending market owned by the signer",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := provideServices()
		defer s.db.Close()

		feeAuthority, _ := cmd.Flags().GetString("fee-authority")
		market, err := s.marketService.Init(ctx, core.InitMarketParams{
			Signer:        requireFlag(cmd, "signer"),
			QuoteCurrency: requireFlag(cmd, "quote"),
			FeeAuthority:  feeAuthority,
		})
		if err != nil {
			cmd.PrintErrln("init market failed:", err)
			return
		}

		printJSON(cmd, market)
	},
}

var setMarketCmd = &cobra.Command{
	Use:     "set-config",
	Aliases: []string{"sc"},
	Short:   "transfer ownership and update the market config",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := provideServices()
		defer s.db.Close()

		liquidator, _ := cmd.Flags().GetString("liquidator")
		window, _ := cmd.Flags().GetUint64("window")
		outflow, _ := cmd.Flags().GetString("max-outflow")

		market, err := s.marketService.SetOwnerAndConfig(ctx, core.SetMarketOwnerAndConfigParams{
			Signer:                requireFlag(cmd, "signer"),
			MarketID:              requireFlag(cmd, "market"),
			NewOwner:              requireFlag(cmd, "owner"),
			RiskAuthority:         requireFlag(cmd, "risk-authority"),
			WhitelistedLiquidator: liquidator,
			RateLimiter: core.RateLimiterConfig{
				WindowDuration: window,
				MaxOutflow:     parseAmount(outflow),
			},
		})
		if err != nil {
			cmd.PrintErrln("set market config failed:", err)
			return
		}

		printJSON(cmd, market)
	},
}

var listMarketsCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "list lending markets",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		database := provideDatabase()
		defer database.Close()

		markets, err := provideMarketStore(database).All(ctx)
		if err != nil {
			cmd.PrintErrln("list markets failed:", err)
			return
		}

		printJSON(cmd, markets)
	},
}

func init() {
	rootCmd.AddCommand(marketCmd)
	marketCmd.PersistentFlags().String("signer", "", "identity signing the operation")

	marketCmd.AddCommand(initMarketCmd)
	initMarketCmd.Flags().String("quote", "USD", "quote currency")
	initMarketCmd.Flags().String("fee-authority", "", "fee authority, default is the signer")

	marketCmd.AddCommand(setMarketCmd)
	setMarketCmd.Flags().String("market", "", "market id")
	setMarketCmd.Flags().String("owner", "", "new owner")
	setMarketCmd.Flags().String("risk-authority", "", "risk authority")
	setMarketCmd.Flags().String("liquidator", "", "whitelisted liquidator, empty allows anyone")
	setMarketCmd.Flags().Uint64("window", 1, "rate limiter window in slots")
	setMarketCmd.Flags().String("max-outflow", "max", "rate limiter max outflow per window, in quote currency")

	marketCmd.AddCommand(listMarketsCmd)
}
