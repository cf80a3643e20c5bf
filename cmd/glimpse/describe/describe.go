package describecmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/papercomputeco/glimpse/cmd/glimpse/settings"
	"github.com/papercomputeco/glimpse/pkg/analysis"
	"github.com/papercomputeco/glimpse/pkg/logger"
	"github.com/papercomputeco/glimpse/pkg/provider"
	"github.com/papercomputeco/glimpse/pkg/render"
	"github.com/papercomputeco/glimpse/pkg/vision"
)

const describeLongDesc string = `Describe an image file with a multimodal model.

The description streams into the terminal as the model writes it and
is rendered as markdown when complete. The API key is taken from
--api-key, then from OPENAI_API_KEY / ANTHROPIC_API_KEY, and is
otherwise prompted for when running in a terminal.

Examples:
  glimpse describe cat.jpg
  glimpse describe -q "¿Qué raza es?" cat.jpg
  glimpse describe --provider anthropic --plain photo.png > description.md`

const describeShortDesc string = "Describe an image file"

// ErrAnalysisFailed is returned when the model call fails after starting.
var ErrAnalysisFailed = errors.New("analysis failed")

type describeCommander struct {
	settings *settings.Flags
	question string
	apiKey   string
	plain    bool

	// stdin is read for the hidden API key prompt.
	stdin *os.File
}

func NewDescribeCmd() *cobra.Command {
	cmder := &describeCommander{stdin: os.Stdin}

	cmd := &cobra.Command{
		Use:   "describe <image>",
		Short: describeShortDesc,
		Long:  describeLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	cmder.settings = settings.Register(cmd)
	cmd.Flags().StringVarP(&cmder.question, "question", "q", "", "Question or extra context about the image")
	cmd.Flags().StringVar(&cmder.apiKey, "api-key", "", "Provider API key")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Stream plain text instead of the terminal UI")

	return cmd
}

func (c *describeCommander) run(ctx context.Context, cmd *cobra.Command, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := c.settings.Resolve()
	if err != nil {
		return err
	}

	// Logs go to stderr so stdout carries only the description.
	log := logger.New(logger.Options{Debug: cfg.Logging.Debug, Output: cmd.ErrOrStderr()})
	if !cfg.Logging.Debug {
		log = zap.NewNop()
	}
	defer log.Sync()

	image, err := loadImage(path)
	if err != nil {
		return err
	}

	credential := settings.Credential(c.apiKey, cfg.Provider.Name)
	if credential == "" && c.stdin != nil && term.IsTerminal(int(c.stdin.Fd())) {
		credential, err = promptCredential(cmd.ErrOrStderr(), c.stdin, cfg.Provider.Name)
		if err != nil {
			return err
		}
	}

	describer, err := provider.New(cfg.ProviderOptions())
	if err != nil {
		return fmt.Errorf("could not create provider: %w", err)
	}
	analyzer := analysis.New(describer, analysis.Prompt{
		Instruction: cfg.Prompt.Instruction,
		Separator:   cfg.Prompt.Separator,
	}, cfg.Provider.Timeout, log)

	in := analysis.Input{
		Image:        image,
		WantsContext: c.question != "",
		Context:      c.question,
		Credential:   credential,
	}

	req, err := analyzer.Prepare(in)
	if err != nil {
		var missing *analysis.MissingInputError
		if errors.As(err, &missing) {
			for _, w := range missing.Warnings() {
				fmt.Fprintln(cmd.ErrOrStderr(), warningStyle.Render(w))
			}
		}
		return err
	}

	out := cmd.OutOrStdout()
	var res render.Result
	if c.plain || !isTerminal(out) {
		res = analyzer.Run(ctx, analysis.NewID(), req, credential, newPlainSurface(out, cmd.ErrOrStderr()))
	} else {
		res, err = c.runTUI(ctx, out, analyzer, req, credential)
		if err != nil {
			return err
		}
	}

	if res.State != render.Done {
		return fmt.Errorf("%w: %w", ErrAnalysisFailed, res.Err)
	}
	return nil
}

// runTUI streams into a bubbletea program. Ctrl-C cancels the analysis.
func (c *describeCommander) runTUI(ctx context.Context, out io.Writer, analyzer *analysis.Analyzer, req vision.PromptRequest, credential string) (render.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	width := 80
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	m := newModel(cancel, newMarkdownRenderer(width), width)
	p := tea.NewProgram(m, tea.WithOutput(out))

	results := make(chan render.Result, 1)
	go func() {
		results <- analyzer.Run(ctx, analysis.NewID(), req, credential, &teaSurface{program: p})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-results
		return render.Result{}, fmt.Errorf("terminal UI failed: %w", err)
	}

	cancel()
	return <-results, nil
}

func loadImage(path string) (*vision.ImageAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read image %s: %w", path, err)
	}

	image := vision.NewImageAsset(filepath.Base(path), "", data)
	if !image.Supported() {
		return nil, fmt.Errorf("unsupported image %s: only jpg, jpeg and png are accepted", path)
	}
	return image, nil
}

func promptCredential(w io.Writer, in *os.File, providerName string) (string, error) {
	fmt.Fprintf(w, "🔑 %s API key (%s): ", providerName, settings.CredentialEnv(providerName))
	key, err := term.ReadPassword(int(in.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		// Fall back to a visible read when the terminal refuses raw mode.
		line, rerr := bufio.NewReader(in).ReadString('\n')
		if rerr != nil && line == "" {
			return "", fmt.Errorf("could not read API key: %w", err)
		}
		return strings.TrimSpace(line), nil
	}
	return strings.TrimSpace(string(key)), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
