package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the label PDF cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list [product]",
	Short: "List cached label PDFs",
	Long:  `Lists downloaded label PDFs, optionally only those cached for a product.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheList,
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requireDocuments(ctx); err != nil {
		return err
	}

	product := ""
	if len(args) == 1 {
		product = args[0]
	}

	pdfs, err := documentService.ListCached(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to list cache: %w", err)
	}

	if len(pdfs) == 0 {
		cmd.Println("No cached PDFs.")
		return nil
	}

	var total int64
	for i := range pdfs {
		total += pdfs[i].Size
		cmd.Printf("  %s (%d KB)\n", pdfs[i].Filename, pdfs[i].Size/1024)
		if pdfs[i].URL != "" {
			cmd.Printf("    %s\n", pdfs[i].URL)
		}
	}
	cmd.Printf("\nTotal: %d PDFs, %d KB\n", len(pdfs), total/1024)
	return nil
}
