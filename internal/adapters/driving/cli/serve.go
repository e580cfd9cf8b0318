package cli

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	resthttp "github.com/custodia-labs/labelrag/internal/adapters/driving/http"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API",
	Long: `Serve the JSON REST API:

  GET  /healthz
  POST /api/v1/find             {"product_name": "...", "question": "..."}
  GET  /api/v1/documents        ?product=
  GET  /api/v1/documents/:id
  GET  /api/v1/documents/:id/chunks
  GET  /api/v1/cache            ?product=`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := requireServices(ctx); err != nil {
		return err
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	router := resthttp.NewRouter(resthttp.Deps{
		Label:    labelService,
		Document: documentService,
		Version:  version,
	})

	if watchConfig != nil {
		watchConfig(ctx)
	}
	return resthttp.Serve(ctx, serveAddr, router)
}
