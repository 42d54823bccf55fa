package cmd

import (
	"os"

	"lending/core"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// reserveFile yaml file holding a reserve config and its rate limiter
type reserveFile struct {
	Config      core.ReserveConfig     `yaml:"config"`
	RateLimiter core.RateLimiterConfig `yaml:"rate_limiter"`
}

func loadReserveFile(filename string) reserveFile {
	data, err := os.ReadFile(filename)
	if err != nil {
		panic(err)
	}

	f := reserveFile{RateLimiter: core.DefaultRateLimiterConfig()}
	if err := yaml.Unmarshal(data, &f); err != nil {
		panic(err)
	}

	return f
}

var reserveCmd = &cobra.Command{
	Use:   "reserve",
	Short: "manage reserves",
}

var initReserveCmd = &cobra.Command{
	Use:   "init",
	Short: "create a reserve seeded with initial liquidity",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := provideServices()
		defer s.db.Close()

		f := loadReserveFile(requireFlag(cmd, "file"))
		decimals, _ := cmd.Flags().GetUint8("decimals")
		source := requireFlag(cmd, "source")
		destination, _ := cmd.Flags().GetString("destination")
		if destination == "" {
			destination = source
		}

		reserve, err := s.reserveService.Init(ctx, core.InitReserveParams{
			Signer:           requireFlag(cmd, "signer"),
			MarketID:         requireFlag(cmd, "market"),
			LiquidityMintID:  requireFlag(cmd, "mint"),
			MintDecimals:     decimals,
			OracleFeedID:     requireFlag(cmd, "feed"),
			Config:           f.Config,
			RateLimiter:      f.RateLimiter,
			Source:           source,
			Destination:      destination,
			InitialLiquidity: parseAmount(requireFlag(cmd, "amount")),
		})
		if err != nil {
			cmd.PrintErrln("init reserve failed:", err)
			return
		}

		printJSON(cmd, reserve)
	},
}

var updateReserveCmd = &cobra.Command{
	Use:     "update-config",
	Aliases: []string{"uc"},
	Short:   "update the config of a reserve",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := provideServices()
		defer s.db.Close()

		f := loadReserveFile(requireFlag(cmd, "file"))
		reserve, err := s.reserveService.UpdateConfig(ctx, core.UpdateReserveConfigParams{
			Signer:      requireFlag(cmd, "signer"),
			MarketID:    requireFlag(cmd, "market"),
			ReserveID:   requireFlag(cmd, "reserve"),
			Config:      f.Config,
			RateLimiter: f.RateLimiter,
		})
		if err != nil {
			cmd.PrintErrln("update reserve config failed:", err)
			return
		}

		printJSON(cmd, reserve)
	},
}

var refreshReserveCmd = &cobra.Command{
	Use:   "refresh",
	Short: "accrue interest and pull oracle prices",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := provideServices()
		defer s.db.Close()

		reserve, err := s.reserveService.Refresh(ctx, requireFlag(cmd, "reserve"))
		if err != nil {
			cmd.PrintErrln("refresh reserve failed:", err)
			return
		}

		printJSON(cmd, reserve)
	},
}

var depositReserveCmd = &cobra.Command{
	Use:   "deposit",
	Short: "deposit liquidity in exchange for collateral tokens",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := provideServices()
		defer s.db.Close()

		amount, err := s.reserveService.DepositLiquidity(ctx, reserveLiquidityParams(cmd))
		if err != nil {
			cmd.PrintErrln("deposit failed:", err)
			return
		}

		cmd.Println("minted collateral", amount)
	},
}

var redeemReserveCmd = &cobra.Command{
	Use:   "redeem",
	Short: "redeem collateral tokens for liquidity",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := provideServices()
		defer s.db.Close()

		amount, err := s.reserveService.RedeemCollateral(ctx, reserveLiquidityParams(cmd))
		if err != nil {
			cmd.PrintErrln("redeem failed:", err)
			return
		}

		cmd.Println("redeemed liquidity", amount)
	},
}

var redeemFeesCmd = &cobra.Command{
	Use:   "redeem-fees",
	Short: "move accumulated protocol fees to the fee receiver",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := provideServices()
		defer s.db.Close()

		amount, err := s.reserveService.RedeemFees(ctx, requireFlag(cmd, "reserve"))
		if err != nil {
			cmd.PrintErrln("redeem fees failed:", err)
			return
		}

		cmd.Println("redeemed fees", amount)
	},
}

func reserveLiquidityParams(cmd *cobra.Command) core.ReserveLiquidityParams {
	return core.ReserveLiquidityParams{
		Signer:      requireFlag(cmd, "signer"),
		ReserveID:   requireFlag(cmd, "reserve"),
		Source:      requireFlag(cmd, "source"),
		Destination: requireFlag(cmd, "destination"),
		Amount:      parseAmount(requireFlag(cmd, "amount")),
	}
}

func init() {
	rootCmd.AddCommand(reserveCmd)
	reserveCmd.PersistentFlags().String("signer", "", "identity signing the operation")
	reserveCmd.PersistentFlags().String("reserve", "", "reserve id")

	reserveCmd.AddCommand(initReserveCmd)
	initReserveCmd.Flags().String("market", "", "market id")
	initReserveCmd.Flags().String("mint", "", "liquidity mint id")
	initReserveCmd.Flags().Uint8("decimals", 0, "liquidity mint decimals")
	initReserveCmd.Flags().String("feed", "", "oracle feed id")
	initReserveCmd.Flags().StringP("file", "f", "", "yaml file with config and rate_limiter")
	initReserveCmd.Flags().String("source", "", "ledger account paying the initial liquidity")
	initReserveCmd.Flags().String("destination", "", "ledger account receiving collateral, default is the source")
	initReserveCmd.Flags().String("amount", "", "initial liquidity")

	reserveCmd.AddCommand(updateReserveCmd)
	updateReserveCmd.Flags().String("market", "", "market id")
	updateReserveCmd.Flags().StringP("file", "f", "", "yaml file with config and rate_limiter")

	reserveCmd.AddCommand(refreshReserveCmd)
	reserveCmd.AddCommand(redeemFeesCmd)

	for _, c := range []*cobra.Command{depositReserveCmd, redeemReserveCmd} {
		reserveCmd.AddCommand(c)
		c.Flags().String("source", "", "ledger account paying the amount")
		c.Flags().String("destination", "", "ledger account receiving the output")
		c.Flags().String("amount", "", "amount")
	}
}
