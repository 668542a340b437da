package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vidscribe/vidscribe/internal/config"
	"github.com/vidscribe/vidscribe/internal/logging"
	"github.com/vidscribe/vidscribe/internal/media"
	"github.com/vidscribe/vidscribe/internal/platform"
	"github.com/vidscribe/vidscribe/internal/subtitle"
	"github.com/vidscribe/vidscribe/internal/version"
	"go.uber.org/zap"
	"golang.org/x/term"
)

type appState struct {
	verbose      bool
	jsonLogs     bool
	noProgress   bool
	model        string
	modelDir     string
	language     string
	outputDir    string
	keepAudio    bool
	autoDownload bool

	cfg    config.Config
	logger *zap.Logger
	out    io.Writer

	extractFn    func(ctx context.Context, videoPath, audioPath string) error
	transcribeFn func(ctx context.Context, audioPath string) (subtitle.Transcript, error)
	translateFn  func(ctx context.Context, transcript subtitle.Transcript, sourceLang, targetLang string) (subtitle.Transcript, error)
}

func NewRootCmd() *cobra.Command {
	cfg, cfgErr := config.LoadDefault()
	if cfgErr != nil {
		cfg = config.Default()
	}

	app := &appState{
		model:        cfg.Defaults.Model,
		language:     cfg.Defaults.Language,
		outputDir:    cfg.Defaults.OutputDir,
		autoDownload: true,
		cfg:          cfg,
		out:          os.Stdout,
	}
	app.extractFn = app.extractAudio
	app.transcribeFn = app.transcribeAudio
	app.translateFn = app.translateTranscript

	cmd := &cobra.Command{
		Use:   "vidscribe <video-file>",
		Short: "Extract subtitles from video files using whisper transcription",
		Long: `Vidscribe turns a video file into an .srt subtitle file and a plain-text
transcript. It extracts the audio track with ffmpeg, transcribes it with a
whisper.cpp model, and writes the timed segments as SRT and TXT.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.logger = logger
			app.language = sanitizeLanguage(app.language)
			if cfgErr != nil {
				logger.Warn("config file ignored", zap.Error(cfgErr))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runPipeline(cmd.Context(), args[0])
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageFlag(cmd, app)
	bindOutputFlag(cmd, app)
	cmd.Flags().BoolVar(&app.keepAudio, "keep-audio", app.keepAudio, "Keep the extracted audio file (WAV)")

	cmd.AddCommand(newExtractCmd(app))
	cmd.AddCommand(newTranscribeCmd(app))
	cmd.AddCommand(newTranslateCmd(app))
	cmd.AddCommand(newModelsCmd(app))
	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.Flags().BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
}

func bindProgressFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
}

func bindModelFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.model, "model", app.model, "Model size (tiny|base|small|medium|large) or a ggml model file path")
	cmd.Flags().StringVar(&app.modelDir, "model-dir", app.modelDir, "Directory where models are stored")
	cmd.Flags().BoolVar(&app.autoDownload, "auto-download", app.autoDownload, "Automatically download missing models")
}

func bindLanguageFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.language, "language", app.language, "Language code (auto|en|de|...) for transcription")
}

func bindOutputFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVarP(&app.outputDir, "output", "o", app.outputDir, "Output directory (default: same as input file)")
}

func (a *appState) extractAudio(ctx context.Context, videoPath, audioPath string) error {
	return media.NewExtractor(a.log()).ExtractAudio(ctx, videoPath, audioPath)
}

func (a *appState) modelStorageDir() (string, error) {
	dir, err := platform.ResolveModelDir(a.modelDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}

func sanitizeLanguage(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	if trimmed == "" {
		return "auto"
	}
	return trimmed
}
