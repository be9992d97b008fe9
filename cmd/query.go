package cmd

import (
	"adharvest/log"

	"github.com/spf13/cobra"
)

// queryCmd represents the query command group
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a one-off LDAP query outside a full collect run",
	Long:  "Query executes a single LDAP filter and prints the requested attributes. Useful for checking a filter or inspecting a handful of objects before committing to a full collect run, which has no interactive output of its own.",
	Run: func(cmd *cobra.Command, args []string) {
		// Get flags
		filter, err := cmd.Flags().GetString("filter")
		if err != nil {
			log.Error(err)
			return
		}
		attrs, err := cmd.Flags().GetStringSlice("attrs")
		if err != nil {
			log.Error(err)
			return
		}

		// Use default filter if none provided
		if filter == "" {
			filter = "(objectClass=*)"
		}

		// Execute common LDAP query logic
		if err := RunQuery(cmd, filter, attrs); err != nil {
			log.Error(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringP("filter", "f", "", "LDAP filter (e.g., (objectClass=user))")
	queryCmd.Flags().StringSliceP("attrs", "a", []string{"*"}, "Attributes to return (default: *)")

}
