package cmd

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "stock-advisor",
	Short: "Hourly stock recommendation engine",
}

func Execute() error {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(cycleCmd)
	return rootCmd.Execute()
}
