package cmd

import (
	"lending/core"

	"github.com/spf13/cobra"
)

var obligationCmd = &cobra.Command{
	Use:     "obligation",
	Aliases: []string{"ob"},
	Short:   "manage obligations",
}

var initObligationCmd = &cobra.Command{
	Use:   "init",
	Short: "open an obligation owned by the signer",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := provideServices()
		defer s.db.Close()

		obligation, err := s.obligationService.Init(ctx, core.InitObligationParams{
			Signer:   requireFlag(cmd, "signer"),
			MarketID: requireFlag(cmd, "market"),
		})
		if err != nil {
			cmd.PrintErrln("init obligation failed:", err)
			return
		}

		printJSON(cmd, obligation)
	},
}

var refreshObligationCmd = &cobra.Command{
	Use:   "refresh",
	Short: "refresh the reserves of an obligation, then the obligation",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := provideServices()
		defer s.db.Close()

		id := requireFlag(cmd, "obligation")
		obligation, err := s.obligations.Find(ctx, id)
		if err != nil {
			cmd.PrintErrln("find obligation failed:", err)
			return
		}

		for _, reserveID := range obligation.ReserveIDs() {
			if _, err := s.reserveService.Refresh(ctx, reserveID); err != nil {
				cmd.PrintErrln("refresh reserve", reserveID, "failed:", err)
				return
			}
		}

		if obligation, err = s.obligationService.Refresh(ctx, id); err != nil {
			cmd.PrintErrln("refresh obligation failed:", err)
			return
		}

		printJSON(cmd, obligation)
	},
}

var depositCollateralCmd = &cobra.Command{
	Use:   "deposit",
	Short: "deposit collateral tokens into an obligation",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := provideServices()
		defer s.db.Close()

		if err := s.obligationService.DepositCollateral(ctx, core.ObligationCollateralParams{
			Signer:       requireFlag(cmd, "signer"),
			ObligationID: requireFlag(cmd, "obligation"),
			ReserveID:    requireFlag(cmd, "reserve"),
			Source:       requireFlag(cmd, "source"),
			Amount:       parseAmount(requireFlag(cmd, "amount")),
		}); err != nil {
			cmd.PrintErrln("deposit collateral failed:", err)
			return
		}

		cmd.Println("deposited")
	},
}

var withdrawCollateralCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "withdraw collateral tokens from an obligation",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := provideServices()
		defer s.db.Close()

		amount, err := s.obligationService.WithdrawCollateral(ctx, core.ObligationCollateralParams{
			Signer:       requireFlag(cmd, "signer"),
			ObligationID: requireFlag(cmd, "obligation"),
			ReserveID:    requireFlag(cmd, "reserve"),
			Destination:  requireFlag(cmd, "destination"),
			Amount:       parseAmount(requireFlag(cmd, "amount")),
		})
		if err != nil {
			cmd.PrintErrln("withdraw collateral failed:", err)
			return
		}

		cmd.Println("withdrawn collateral", amount)
	},
}

var borrowCmd = &cobra.Command{
	Use:   "borrow",
	Short: "borrow liquidity against an obligation",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := provideServices()
		defer s.db.Close()

		host, _ := cmd.Flags().GetString("host")
		amount, err := s.obligationService.Borrow(ctx, core.ObligationLiquidityParams{
			Signer:          requireFlag(cmd, "signer"),
			ObligationID:    requireFlag(cmd, "obligation"),
			ReserveID:       requireFlag(cmd, "reserve"),
			Destination:     requireFlag(cmd, "destination"),
			HostFeeReceiver: host,
			Amount:          parseAmount(requireFlag(cmd, "amount")),
		})
		if err != nil {
			cmd.PrintErrln("borrow failed:", err)
			return
		}

		cmd.Println("received", amount)
	},
}

var repayCmd = &cobra.Command{
	Use:   "repay",
	Short: "repay borrowed liquidity",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := provideServices()
		defer s.db.Close()

		amount, err := s.obligationService.Repay(ctx, core.ObligationLiquidityParams{
			Signer:       requireFlag(cmd, "signer"),
			ObligationID: requireFlag(cmd, "obligation"),
			ReserveID:    requireFlag(cmd, "reserve"),
			Source:       requireFlag(cmd, "source"),
			Amount:       parseAmount(requireFlag(cmd, "amount")),
		})
		if err != nil {
			cmd.PrintErrln("repay failed:", err)
			return
		}

		cmd.Println("repaid", amount)
	},
}

var liquidateCmd = &cobra.Command{
	Use:   "liquidate",
	Short: "repay debt of an unhealthy obligation in exchange for its collateral",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s := provideServices()
		defer s.db.Close()

		output, err := s.obligationService.Liquidate(ctx, core.LiquidateObligationParams{
			Signer:            requireFlag(cmd, "signer"),
			ObligationID:      requireFlag(cmd, "obligation"),
			RepayReserveID:    requireFlag(cmd, "repay-reserve"),
			WithdrawReserveID: requireFlag(cmd, "withdraw-reserve"),
			Source:            requireFlag(cmd, "source"),
			Destination:       requireFlag(cmd, "destination"),
			Amount:            parseAmount(requireFlag(cmd, "amount")),
		})
		if err != nil {
			cmd.PrintErrln("liquidate failed:", err)
			return
		}

		printJSON(cmd, output)
	},
}

var listObligationsCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "list obligations of an owner",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		database := provideDatabase()
		defer database.Close()

		market, _ := cmd.Flags().GetString("market")
		obligations, err := provideObligationStore(database).ListByOwner(ctx, market, requireFlag(cmd, "owner"))
		if err != nil {
			cmd.PrintErrln("list obligations failed:", err)
			return
		}

		printJSON(cmd, obligations)
	},
}

func init() {
	rootCmd.AddCommand(obligationCmd)
	obligationCmd.PersistentFlags().String("signer", "", "identity signing the operation")
	obligationCmd.PersistentFlags().String("obligation", "", "obligation id")

	obligationCmd.AddCommand(initObligationCmd)
	initObligationCmd.Flags().String("market", "", "market id")

	obligationCmd.AddCommand(refreshObligationCmd)

	obligationCmd.AddCommand(depositCollateralCmd, repayCmd)
	for _, c := range []*cobra.Command{depositCollateralCmd, repayCmd} {
		c.Flags().String("reserve", "", "reserve id")
		c.Flags().String("source", "", "ledger account paying the amount")
		c.Flags().String("amount", "", "amount, or max")
	}

	obligationCmd.AddCommand(withdrawCollateralCmd, borrowCmd)
	for _, c := range []*cobra.Command{withdrawCollateralCmd, borrowCmd} {
		c.Flags().String("reserve", "", "reserve id")
		c.Flags().String("destination", "", "ledger account receiving the output")
		c.Flags().String("amount", "", "amount, or max")
	}
	borrowCmd.Flags().String("host", "", "ledger account receiving the host fee")

	obligationCmd.AddCommand(liquidateCmd)
	liquidateCmd.Flags().String("repay-reserve", "", "reserve of the repaid debt")
	liquidateCmd.Flags().String("withdraw-reserve", "", "reserve of the seized collateral")
	liquidateCmd.Flags().String("source", "", "ledger account paying the repay liquidity")
	liquidateCmd.Flags().String("destination", "", "ledger account receiving the collateral")
	liquidateCmd.Flags().String("amount", "", "repay amount, or max")

	obligationCmd.AddCommand(listObligationsCmd)
	listObligationsCmd.Flags().String("owner", "", "obligation owner")
	listObligationsCmd.Flags().String("market", "", "market id")
}
