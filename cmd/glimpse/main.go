package main

import (
	"os"

	"github.com/spf13/cobra"

	describecmder "github.com/papercomputeco/glimpse/cmd/glimpse/describe"
	mcpcmder "github.com/papercomputeco/glimpse/cmd/glimpse/mcp"
	servecmder "github.com/papercomputeco/glimpse/cmd/glimpse/serve"
)

const rootLongDesc string = `glimpse describes images with a multimodal language model.

Upload an image in the browser (serve), describe a file from the
terminal (describe), or expose the same flow as an MCP tool (mcp).
The description streams in as the model writes it.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "glimpse",
		Short:         "Streamed image descriptions from a multimodal LLM",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(describecmder.NewDescribeCmd())
	cmd.AddCommand(mcpcmder.NewMCPCmd())

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
