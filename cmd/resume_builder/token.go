package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the export route",
	Long:  `Signs a JWT with EXPORT_JWT_SECRET. Only tokens issued with --export may download PDFs.`,
	RunE:  runToken,
}

var (
	tokenSubject string
	tokenExport  bool
)

func init() {
	tokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "", "Token subject (required)")
	tokenCmd.Flags().BoolVar(&tokenExport, "export", false, "Grant the export claim")

	if err := tokenCmd.MarkFlagRequired("subject"); err != nil {
		panic(fmt.Sprintf("failed to mark subject flag as required: %v", err))
	}

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	authorizer, err := newAuthorizer(cfg)
	if err != nil {
		return err
	}
	if authorizer == nil {
		return fmt.Errorf("EXPORT_JWT_SECRET environment variable is required")
	}

	token, err := authorizer.IssueToken(tokenSubject, tokenExport)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
