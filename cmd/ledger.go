package cmd

import (
	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "inspect and move token balances",
}

var balanceCmd = &cobra.Command{
	Use:     "balance",
	Aliases: []string{"bal"},
	Short:   "balance of a ledger account",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		database := provideDatabase()
		defer database.Close()

		balance, err := provideLedger(database).Balance(ctx, requireFlag(cmd, "mint"), requireFlag(cmd, "account"))
		if err != nil {
			cmd.PrintErrln("read balance failed:", err)
			return
		}

		cmd.Println(balance)
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "move tokens between ledger accounts",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		database := provideDatabase()
		defer database.Close()

		mint := requireFlag(cmd, "mint")
		amount := parseAmount(requireFlag(cmd, "amount"))
		if err := provideLedger(database).Transfer(ctx, mint, requireFlag(cmd, "from"), requireFlag(cmd, "to"), amount); err != nil {
			cmd.PrintErrln("transfer failed:", err)
			return
		}

		cmd.Println("transferred", amount, mint)
	},
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.PersistentFlags().String("mint", "", "mint id")

	ledgerCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().String("account", "", "ledger account")

	ledgerCmd.AddCommand(transferCmd)
	transferCmd.Flags().String("from", "", "source account")
	transferCmd.Flags().String("to", "", "destination account")
	transferCmd.Flags().String("amount", "", "amount")
}
