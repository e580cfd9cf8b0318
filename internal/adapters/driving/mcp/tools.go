package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/labelrag/internal/core/domain"
)

// FindInput is the input schema for the find_and_retrieve tool.
type FindInput struct {
	ProductName      string `json:"product_name" jsonschema:"the pesticide product name, e.g. Roundup PowerMAX"`
	Question         string `json:"question" jsonschema:"the question to answer from the product label"`
	ActiveIngredient string `json:"active_ingredient,omitempty" jsonschema:"optional active ingredient to narrow the label search"`
	Limit            int    `json:"limit,omitempty" jsonschema:"maximum number of passages to return (default 5)"`
}

// FindOutput is the output schema for the find_and_retrieve tool.
type FindOutput struct {
	Success        bool            `json:"success"`
	RequestID      string          `json:"request_id"`
	ProductName    string          `json:"product_name"`
	Passages       []PassageOutput `json:"passages"`
	Count          int             `json:"count"`
	PDFsDownloaded int             `json:"pdfs_downloaded"`
	PDFsIndexed    int             `json:"pdfs_indexed"`
	SourceUsed     string          `json:"source_used,omitempty"`
	SourcesTried   []string        `json:"sources_tried"`
	UsedFallback   bool            `json:"used_fallback"`
	Answer         string          `json:"answer,omitempty"`
	Message        string          `json:"message,omitempty"`
	Errors         []string        `json:"errors,omitempty"`
}

// PassageOutput represents a single cited passage.
type PassageOutput struct {
	Content     string  `json:"content"`
	PageNumber  int     `json:"page_number"`
	SourceFile  string  `json:"source_file"`
	PDFURL      string  `json:"pdf_url"`
	Score       float64 `json:"score"`
	DocumentID  string  `json:"document_id"`
	ViaFallback bool    `json:"via_fallback"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	Product string `json:"product,omitempty" jsonschema:"only list documents for this product"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput represents a single indexed label document.
type DocumentOutput struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Product     string `json:"product"`
	SourceURL   string `json:"source_url,omitempty"`
	NumPages    int    `json:"num_pages"`
	NumChunks   int    `json:"num_chunks"`
	Processed   bool   `json:"processed"`
	Indexed     string `json:"indexed,omitempty"`
	ResourceURI string `json:"resource_uri"`
}

const findDescription = "Find the official label for a pesticide product, index it, and return " +
	"passages answering the question with page numbers and downloadable PDF citations"

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_and_retrieve",
		Description: findDescription,
	}, s.handleFind)

	if s.ports.Document != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List label documents that have already been indexed",
		}, s.handleListDocuments)
	}
}

// handleFind handles the find_and_retrieve tool invocation.
func (s *Server) handleFind(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindInput,
) (*mcp.CallToolResult, FindOutput, error) {
	result, err := s.ports.Label.FindAndRetrieve(ctx, domain.FindRequest{
		ProductName:      input.ProductName,
		Question:         input.Question,
		ActiveIngredient: input.ActiveIngredient,
		Limit:            input.Limit,
	})
	if err != nil {
		return nil, FindOutput{}, err
	}

	return nil, newFindOutput(result), nil
}

func newFindOutput(result *domain.FindResult) FindOutput {
	output := FindOutput{
		Success:        result.Success,
		RequestID:      result.RequestID,
		ProductName:    result.ProductName,
		Passages:       make([]PassageOutput, len(result.Passages)),
		Count:          len(result.Passages),
		PDFsDownloaded: result.PDFsDownloaded,
		PDFsIndexed:    result.PDFsIndexed,
		SourceUsed:     result.SourceUsed,
		SourcesTried:   result.SourcesTried,
		UsedFallback:   result.UsedFallback,
		Answer:         result.Answer,
		Message:        result.Message,
		Errors:         result.Errors,
	}
	if output.SourcesTried == nil {
		output.SourcesTried = []string{}
	}

	for i := range result.Passages {
		p := result.Passages[i]
		output.Passages[i] = PassageOutput{
			Content:     p.Content,
			PageNumber:  p.PageNumber,
			SourceFile:  p.SourceFile,
			PDFURL:      p.PDFURL,
			Score:       p.Score,
			DocumentID:  p.DocumentID,
			ViaFallback: p.ViaFallback,
		}
	}
	return output
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Document == nil {
		return nil, ListDocumentsOutput{}, errors.New("document service not configured")
	}

	docs, err := s.ports.Document.List(ctx, input.Product)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = DocumentOutput{
			ID:          docs[i].ID,
			Filename:    docs[i].Filename,
			Product:     docs[i].ProductKey,
			SourceURL:   docs[i].SourceURL,
			NumPages:    docs[i].NumPages,
			NumChunks:   docs[i].NumChunks,
			Processed:   docs[i].Processed,
			ResourceURI: documentURI(docs[i].ID),
		}
		if docs[i].LastProcessed != nil {
			output.Documents[i].Indexed = docs[i].LastProcessed.Format(time.RFC3339)
		}
	}

	return nil, output, nil
}
