package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/labelrag/internal/core/ports/driving"
)

var (
	indexProduct string
	indexURL     string
	indexForce   bool
)

var indexCmd = &cobra.Command{
	Use:   "index [glob]",
	Short: "Index local label PDFs",
	Long: `Chunks and indexes local PDFs matching a glob pattern. Patterns support **
for recursive matching. Already indexed files are skipped unless --force is set.

Examples:
  labelrag index "labels/**/*.pdf" --product "Roundup PowerMAX"
  labelrag index ./ld8CM013.pdf -p Roundup -u https://www.cdms.net/ldat/ld8CM013.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexProduct, "product", "p", "", "product the files belong to")
	indexCmd.Flags().StringVarP(&indexURL, "url", "u", "", "citation URL for the files")
	indexCmd.Flags().BoolVarP(&indexForce, "force", "f", false, "reindex files that are already indexed")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requireServices(ctx); err != nil {
		return err
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}

	reports, err := documentService.IndexFiles(ctx, driving.IndexFilesRequest{
		Pattern:   args[0],
		Product:   indexProduct,
		SourceURL: indexURL,
		Force:     indexForce,
	})

	var indexed, skipped, passages int
	for i := range reports {
		r := reports[i]
		switch {
		case r.Skipped:
			skipped++
			cmd.Printf("  skip  %s (already indexed, %d passages)\n", r.Filename, r.Passages)
		case r.Passages > 0:
			indexed++
			passages += r.Passages
			cmd.Printf("  ok    %s: %d chunks, %d passages", r.Filename, r.Chunks, r.Passages)
			if r.Rejected > 0 {
				cmd.Printf(", %d rejected", r.Rejected)
			}
			if r.EstimatedPages > 0 {
				cmd.Printf(", %d estimated pages", r.EstimatedPages)
			}
			cmd.Println()
		default:
			cmd.Printf("  fail  %s\n", r.Filename)
		}
	}
	if len(reports) > 0 {
		cmd.Printf("\nIndexed %d, skipped %d, %d passages written.\n", indexed, skipped, passages)
	}

	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}
	return nil
}
