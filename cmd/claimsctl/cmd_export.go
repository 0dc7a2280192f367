package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"claims-dashboard/internal/core/domain"

	"github.com/spf13/cobra"
)

var (
	exportSearch   string
	exportStage    string
	exportAssignee string
	exportOutput   string

	templateSecondary bool
)

// exportCmd writes claims as CSV
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export claims to CSV",
	RunE:  runExport,
}

// templateCmd prints the payer template for one claim
var templateCmd = &cobra.Command{
	Use:   "template <claim-id>",
	Short: "Print the template string for a claim",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplate,
}

func init() {
	exportCmd.Flags().StringVar(&exportSearch, "search", "", "Free-text search")
	exportCmd.Flags().StringVar(&exportStage, "stage", "", "Stage to export (ALL for every stage)")
	exportCmd.Flags().StringVar(&exportAssignee, "assignee", "", "Assignee name or email")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")

	templateCmd.Flags().BoolVar(&templateSecondary, "secondary", false, "Use the secondary coverage")
}

func exportFilter() (domain.ClaimFilter, error) {
	f := domain.ClaimFilter{
		Search:   strings.TrimSpace(exportSearch),
		Assignee: strings.TrimSpace(exportAssignee),
	}
	if v := strings.TrimSpace(exportStage); v != "" && !strings.EqualFold(v, "ALL") {
		stage, err := domain.ParseStage(v)
		if err != nil {
			return f, err
		}
		f.Stages = []domain.Stage{stage}
	}
	return f, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	filter, err := exportFilter()
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	n, err := claimService().Export(cmd.Context(), filter, w)
	if err != nil {
		return err
	}
	if exportOutput != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d claims to %s\n", n, exportOutput)
	}
	return nil
}

func runTemplate(cmd *cobra.Command, args []string) error {
	side := domain.SidePrimary
	if templateSecondary {
		side = domain.SideSecondary
	}
	tmpl, err := claimService().Template(cmd.Context(), args[0], side)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tmpl)
	return nil
}
