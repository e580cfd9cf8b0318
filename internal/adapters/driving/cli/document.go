package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage indexed documents",
	Long:  `List indexed label documents and inspect their metadata and chunks.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list [product]",
	Short: "List indexed documents",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentChunksCmd = &cobra.Command{
	Use:   "chunks [doc-id]",
	Short: "Print a document's page-tagged chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentChunks,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentChunksCmd)
	rootCmd.AddCommand(documentCmd)
}

func requireDocuments(ctx context.Context) error {
	if err := requireServices(ctx); err != nil {
		return err
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}
	return nil
}

func runDocumentList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requireDocuments(ctx); err != nil {
		return err
	}

	product := ""
	if len(args) == 1 {
		product = args[0]
	}

	docs, err := documentService.List(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		if product != "" {
			cmd.Printf("No documents found for product: %s\n", product)
		} else {
			cmd.Println("No documents indexed yet.")
		}
		return nil
	}

	for i := range docs {
		status := "indexed"
		if !docs[i].Processed {
			status = "incomplete"
		}
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    File:    %s\n", docs[i].Filename)
		cmd.Printf("    Product: %s\n", docs[i].ProductKey)
		cmd.Printf("    Pages:   %d, chunks: %d (%s)\n", docs[i].NumPages, docs[i].NumChunks, status)
		if docs[i].SourceURL != "" {
			cmd.Printf("    URL:     %s\n", docs[i].SourceURL)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requireDocuments(ctx); err != nil {
		return err
	}

	details, err := documentService.GetDetails(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", details.ID)
	cmd.Printf("  File:      %s\n", details.Filename)
	cmd.Printf("  Path:      %s\n", details.Filepath)
	cmd.Printf("  Product:   %s\n", details.ProductKey)
	if details.SourceURL != "" {
		cmd.Printf("  URL:       %s\n", details.SourceURL)
	}
	cmd.Printf("  Size:      %d bytes\n", details.FileSize)
	cmd.Printf("  Pages:     %d\n", details.NumPages)
	cmd.Printf("  Chunks:    %d\n", details.ChunkCount)
	cmd.Printf("  Passages:  %d\n", details.PassageCount)
	cmd.Printf("  Processed: %t\n", details.Processed)
	cmd.Printf("  Created:   %s\n", details.CreatedAt.Format("2006-01-02 15:04:05"))
	if details.LastProcessed != nil {
		cmd.Printf("  Indexed:   %s\n", details.LastProcessed.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runDocumentChunks(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requireDocuments(ctx); err != nil {
		return err
	}

	chunks, err := documentService.GetChunks(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}

	for i := range chunks {
		cmd.Printf("--- chunk %d, page %d (%d tokens) ---\n", chunks[i].Index, chunks[i].PageNumber, chunks[i].TokenCount)
		cmd.Println(chunks[i].Content)
		cmd.Println()
	}
	cmd.Printf("Total: %d chunks\n", len(chunks))
	return nil
}
