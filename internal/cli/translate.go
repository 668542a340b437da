package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vidscribe/vidscribe/internal/subtitle"
	"github.com/vidscribe/vidscribe/internal/translate"
	"go.uber.org/zap"
)

func newTranslateCmd(app *appState) *cobra.Command {
	var (
		targetLang string
		sourceLang string
	)

	cmd := &cobra.Command{
		Use:   "translate <srt-file>",
		Short: "Translate an SRT file with a local Ollama model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(targetLang) == "" {
				return fmt.Errorf("--to is required")
			}

			translateFn := app.translateFn
			if translateFn == nil {
				translateFn = app.translateTranscript
			}

			srtPath := filepath.Clean(args[0])
			transcript, err := subtitle.ParseSRT(srtPath)
			if err != nil {
				return err
			}
			app.log().Info("translating subtitles",
				zap.String("srt", srtPath),
				zap.Int("segments", len(transcript.Segments)),
				zap.String("to", targetLang),
			)

			translated, err := translateFn(cmd.Context(), transcript, sourceLang, targetLang)
			if err != nil {
				return err
			}

			outDir, err := app.resolveOutputDir(srtPath)
			if err != nil {
				return err
			}
			outPath := filepath.Join(outDir, translatedFileName(srtPath, targetLang))

			if err := subtitle.WriteSRT(translated, outPath); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindOutputFlag(cmd, app)
	cmd.Flags().StringVar(&targetLang, "to", "", "Target language (e.g. German, zh)")
	cmd.Flags().StringVar(&sourceLang, "from", "the original language", "Source language of the subtitles")

	return cmd
}

func (a *appState) translateTranscript(ctx context.Context, transcript subtitle.Transcript, sourceLang, targetLang string) (subtitle.Transcript, error) {
	client := translate.NewClient(a.cfg.Ollama.BaseURL, a.cfg.Ollama.Model, a.log())
	if err := client.Ping(ctx); err != nil {
		return subtitle.Transcript{}, err
	}

	stopSpinner := startSpinner(a.progressEnabled(), "Translating")
	defer stopSpinner()

	return client.TranslateTranscript(ctx, transcript, sourceLang, targetLang, func(done, total int) {
		a.log().Debug("segment translated", zap.Int("done", done), zap.Int("total", total))
	})
}

func translatedFileName(srtPath, targetLang string) string {
	lang := strings.ToLower(strings.TrimSpace(targetLang))
	lang = strings.ReplaceAll(lang, " ", "-")
	return baseName(srtPath) + "." + lang + ".srt"
}
