package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/labelrag/internal/core/domain"
)

var (
	findIngredient string
	findLimit      int
	findThreshold  float64
	findJSON       bool
	findForce      bool
)

var findCmd = &cobra.Command{
	Use:   "find [product] [question]",
	Short: "Answer a question from a product's label",
	Long: `Searches label archives for the product, downloads and indexes up to three
label PDFs, and prints the passages that answer the question with page
numbers and citation URLs.

Examples:
  labelrag find "Roundup PowerMAX" "What is the re-entry interval?"
  labelrag find Sevin "How much per acre on tomatoes?" --ingredient carbaryl --json`,
	Args: cobra.ExactArgs(2),
	RunE: runFind,
}

func init() {
	findCmd.Flags().StringVarP(&findIngredient, "ingredient", "i", "", "active ingredient to narrow the label search")
	findCmd.Flags().IntVarP(&findLimit, "limit", "n", 0, "maximum number of passages (default from settings)")
	findCmd.Flags().Float64VarP(&findThreshold, "threshold", "t", 0, "minimum similarity score, 0 keeps every hit (default from settings)")
	findCmd.Flags().BoolVar(&findJSON, "json", false, "output the result as JSON")
	findCmd.Flags().BoolVarP(&findForce, "force", "f", false, "reindex PDFs that are already indexed")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requireServices(ctx); err != nil {
		return err
	}
	if labelService == nil {
		return errors.New("label service not configured")
	}

	req := domain.FindRequest{
		ProductName:      args[0],
		Question:         args[1],
		ActiveIngredient: findIngredient,
		Limit:            findLimit,
		Force:            findForce,
	}
	if cmd.Flags().Changed("threshold") {
		threshold := findThreshold
		req.ScoreThreshold = &threshold
	}

	result, err := labelService.FindAndRetrieve(ctx, req)
	if err != nil {
		return fmt.Errorf("find failed: %w", err)
	}

	if findJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	renderFindResult(cmd, result)
	return nil
}

// renderFindResult prints a result for people: numbered passages with
// page, file and score, then the cited sources.
func renderFindResult(cmd *cobra.Command, r *domain.FindResult) {
	cmd.Printf("Product: %s\n", r.ProductName)
	if r.SourceUsed != "" {
		cmd.Printf("Source:  %s (tried %s)\n", r.SourceUsed, strings.Join(r.SourcesTried, ", "))
	}
	cmd.Printf("PDFs:    %d acquired, %d indexed\n", r.PDFsDownloaded, r.PDFsIndexed)
	cmd.Println()

	if len(r.Passages) == 0 {
		if r.Message != "" {
			cmd.Println(r.Message)
		} else {
			cmd.Println("No passages found.")
		}
		renderErrors(cmd, r.Errors)
		return
	}

	if r.Answer != "" {
		cmd.Printf("Summary: %s\n\n", r.Answer)
	}

	cmd.Println("Passages:")
	cmd.Println()
	var sources []string
	seen := make(map[string]bool)
	for i := range r.Passages {
		p := r.Passages[i]
		cmd.Printf("  [%d] Page %d, %s (%.2f)\n", i+1, p.PageNumber, p.SourceFile, p.Score)
		for _, line := range strings.Split(strings.TrimSpace(p.Content), "\n") {
			cmd.Printf("      %s\n", line)
		}
		if p.PDFURL != "" {
			cmd.Printf("      Cite: %s\n", p.PDFURL)
			if !seen[p.PDFURL] {
				seen[p.PDFURL] = true
				sources = append(sources, p.PDFURL)
			}
		}
		cmd.Println()
	}

	if len(sources) > 0 {
		cmd.Println("Sources:")
		for _, s := range sources {
			cmd.Printf("  - %s\n", s)
		}
	}
	if r.UsedFallback {
		cmd.Println()
		cmd.Println("Note: some passages were matched outside the product's own label index.")
	}
	renderErrors(cmd, r.Errors)
}

func renderErrors(cmd *cobra.Command, errs []string) {
	if len(errs) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Errors:")
	for _, e := range errs {
		cmd.Printf("  - %s\n", e)
	}
}
