package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pixelglyph/qrsmith/internal/server"
	"github.com/pixelglyph/qrsmith/pkg/pipeline"
)

// serveCommand creates the HTTP service command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the render HTTP API",
		Long: `Run the render service. POST /api/v1/render accepts the same options
as the render command as JSON and responds with the image, or with a
JSON envelope carrying base64 images, warnings, and stats when the
request asks for application/json.

GET /healthz reports liveness. Set ` + redisURLEnv + ` to share the
render cache between instances; without it each instance caches on
local disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newCache(noCache)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(store, nil, c.Logger)
			defer runner.Close()

			srv := server.New(server.Config{
				Addr:   addr,
				Logger: c.Logger,
				Runner: runner,
			})

			printInfo("Render API listening on %s", addr)
			printDetail("POST /api/v1/render")
			printDetail("GET  /healthz")
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr(), "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}

// defaultAddr honors the PORT convention of container platforms.
func defaultAddr() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ":8080"
}
