package mcpcmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/glimpse/cmd/glimpse/settings"
	"github.com/papercomputeco/glimpse/pkg/analysis"
	"github.com/papercomputeco/glimpse/pkg/logger"
	"github.com/papercomputeco/glimpse/pkg/provider"
	"github.com/papercomputeco/glimpse/pkg/render"
	"github.com/papercomputeco/glimpse/pkg/vision"
)

const mcpLongDesc string = `Run a Model Context Protocol server on stdio.

The server offers one tool, describe_image, which reads a local jpg or png
file and returns the model's description. The API key comes from --api-key,
the provider's environment variable, or the tool call's api_key argument.
Logs are written to stderr.`

const mcpShortDesc string = "Serve image descriptions over MCP"

// ToolName is the name of the tool offered by the server.
const ToolName = "describe_image"

type mcpCommander struct {
	settings *settings.Flags
	apiKey   string
}

func NewMCPCmd() *cobra.Command {
	cmder := &mcpCommander{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmder.settings = settings.Register(cmd)
	cmd.Flags().StringVar(&cmder.apiKey, "api-key", "", "Provider API key used when a call does not pass one")

	return cmd
}

func (c *mcpCommander) run(cmd *cobra.Command) error {
	cfg, err := c.settings.Resolve()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{Debug: cfg.Logging.Debug, Output: cmd.ErrOrStderr()})
	defer log.Sync()

	describer, err := provider.New(cfg.ProviderOptions())
	if err != nil {
		return fmt.Errorf("could not create provider: %w", err)
	}
	analyzer := analysis.New(describer, analysis.Prompt{
		Instruction: cfg.Prompt.Instruction,
		Separator:   cfg.Prompt.Separator,
	}, cfg.Provider.Timeout, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := NewServer(analyzer, settings.Credential(c.apiKey, cfg.Provider.Name), log)

	log.Info("serving mcp on stdio",
		zap.String("provider", cfg.Provider.Name),
		zap.String("model", cfg.Provider.Model),
	)
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// DescribeImageInput is the argument object of the describe_image tool.
type DescribeImageInput struct {
	Path     string `json:"path" jsonschema:"path to a local jpg, jpeg or png image"`
	Question string `json:"question,omitempty" jsonschema:"optional question or extra context about the image"`
	APIKey   string `json:"api_key,omitempty" jsonschema:"provider API key, when the server has none configured"`
}

// NewServer builds the MCP server. credential is used for calls that do not
// carry their own key.
func NewServer(analyzer *analysis.Analyzer, credential string, log *zap.Logger) *mcp.Server {
	if log == nil {
		log = zap.NewNop()
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "glimpse", Version: "v1.0.0"}, nil)

	h := &toolHandler{analyzer: analyzer, credential: credential, logger: log}
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolName,
		Description: "Describe the contents of an image file using a multimodal language model.",
	}, h.describeImage)

	return server
}

type toolHandler struct {
	analyzer   *analysis.Analyzer
	credential string
	logger     *zap.Logger
}

func (h *toolHandler) describeImage(ctx context.Context, _ *mcp.CallToolRequest, in DescribeImageInput) (*mcp.CallToolResult, any, error) {
	input := analysis.Input{
		WantsContext: in.Question != "",
		Context:      in.Question,
		Credential:   strings.TrimSpace(in.APIKey),
	}
	if input.Credential == "" {
		input.Credential = h.credential
	}

	if in.Path != "" {
		data, err := os.ReadFile(in.Path)
		if err != nil {
			return toolError(fmt.Sprintf("could not read image: %v", err)), nil, nil
		}
		image := vision.NewImageAsset(filepath.Base(in.Path), "", data)
		if !image.Supported() {
			return toolError("solo se aceptan imágenes jpg, jpeg o png"), nil, nil
		}
		input.Image = image
	}

	rec := &render.Recorder{}
	res, err := h.analyzer.Analyze(ctx, input, rec)
	if err != nil {
		var missing *analysis.MissingInputError
		if errors.As(err, &missing) {
			return toolError(strings.Join(missing.Warnings(), "\n")), nil, nil
		}
		return nil, nil, err
	}

	if res.State != render.Done {
		return toolError(rec.Last().Text), nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: res.Text}},
	}, nil, nil
}

func toolError(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
	}
}
