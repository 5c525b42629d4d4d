package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davesmith10/linresize/internal/resample"
)

var kernelsCmd = &cobra.Command{
	Use:   "kernels",
	Short: "List the resampling kernels",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for i, k := range resample.Kernels() {
			fmt.Fprintf(cmd.OutOrStdout(), "%d  %-10s  support %g\n", i, k, k.Support())
		}
	},
}

func init() {
	rootCmd.AddCommand(kernelsCmd)
}
