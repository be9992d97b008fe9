package cmd

import (
	"context"
	"fmt"
	"time"

	"adharvest/collect"
	"adharvest/connect"
	"adharvest/log"
	"adharvest/output"

	"github.com/spf13/cobra"
)

// collectCmd runs the full enumeration-and-resolution pipeline end to end:
// it queries every object class the pipeline needs, resolves DN membership
// into SID edges, synthesizes well-known principals, and writes the result
// as BloodHound legacy ingest files.
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect the domain and resolve it into a BloodHound-ingestible graph",
	Long:  "Collect runs every query the relationship graph needs, resolves membership/ACL/delegation edges into SIDs, and writes BloodHound legacy ingest JSON files to the output directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		cfg := GetConfig()

		ldapClient, err := connect.NewClient(&cfg.LDAP)
		if err != nil {
			return fmt.Errorf("creating LDAP client: %w", err)
		}
		defer ldapClient.Close()

		outDir, err := cmd.Flags().GetString("dir")
		if err != nil {
			return err
		}

		start := time.Now()
		progress := func(pass string, processed, total int) {
			log.Infow("pipeline pass", "pass", pass, "processed", processed, "total", total)
		}

		corpus, err := collect.Collect(ctx, ldapClient, progress)
		if err != nil {
			return fmt.Errorf("collecting domain: %w", err)
		}

		if err := output.WriteIngestFiles(corpus.Pipeline, outDir); err != nil {
			return fmt.Errorf("writing ingest files: %w", err)
		}

		log.Infow("collection complete",
			"elapsed", time.Since(start).String(),
			"users", len(corpus.Pipeline.Users),
			"computers", len(corpus.Pipeline.Computers),
			"groups", len(corpus.Pipeline.Groups))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringP("dir", "d", ".", "Directory to write BloodHound ingest JSON files to")
}
