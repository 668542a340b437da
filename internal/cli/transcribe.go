package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/vidscribe/vidscribe/internal/download"
	"github.com/vidscribe/vidscribe/internal/subtitle"
	"github.com/vidscribe/vidscribe/internal/whisper"
	"go.uber.org/zap"
)

func newTranscribeCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file into SRT and TXT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transcribeFn := app.transcribeFn
			if transcribeFn == nil {
				transcribeFn = app.transcribeAudio
			}

			audioPath := filepath.Clean(args[0])
			transcript, err := transcribeFn(cmd.Context(), audioPath)
			if err != nil {
				return err
			}

			outDir, err := app.resolveOutputDir(audioPath)
			if err != nil {
				return err
			}

			base := baseName(audioPath)
			srtPath := filepath.Join(outDir, base+".srt")
			txtPath := filepath.Join(outDir, base+".txt")

			if err := subtitle.WriteSRT(transcript, srtPath); err != nil {
				return err
			}
			if err := subtitle.WriteTXT(transcript, txtPath); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), srtPath)
			fmt.Fprintln(cmd.OutOrStdout(), txtPath)
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageFlag(cmd, app)
	bindOutputFlag(cmd, app)

	return cmd
}

func (a *appState) transcribeAudio(ctx context.Context, audioPath string) (subtitle.Transcript, error) {
	audioPath = filepath.Clean(audioPath)
	if _, err := os.Stat(audioPath); err != nil {
		return subtitle.Transcript{}, &whisper.TranscriptionError{Audio: audioPath, Err: fmt.Errorf("audio file not found: %w", err)}
	}

	model, err := a.ensureModelAvailable(ctx)
	if err != nil {
		return subtitle.Transcript{}, err
	}

	engine, err := whisper.NewCLIEngine(a.log())
	if err != nil {
		return subtitle.Transcript{}, err
	}

	a.log().Info("transcribing...",
		zap.String("audio", audioPath),
		zap.String("model", model.Path),
		zap.String("language", a.language),
	)
	stopSpinner := startSpinner(a.progressEnabled(), "Transcribing")
	started := time.Now()

	transcript, err := engine.Transcribe(ctx, whisper.TranscriptionRequest{
		AudioPath: audioPath,
		ModelPath: model.Path,
		Language:  a.language,
	})
	stopSpinner()
	if err != nil {
		a.log().Warn("transcription failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return subtitle.Transcript{}, err
	}
	a.log().Info("transcription finished", zap.Duration("elapsed", time.Since(started)))

	return transcript, nil
}

func (a *appState) ensureModelAvailable(ctx context.Context) (whisper.ResolvedModel, error) {
	modelDir, err := a.modelStorageDir()
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	resolved, err := whisper.ResolveModel(a.model, modelDir)
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	if !resolved.NeedsDownload {
		return resolved, nil
	}

	if !a.autoDownload {
		return whisper.ResolvedModel{}, fmt.Errorf("model %q is missing at %s; run `vidscribe setup --model %s` or use --auto-download=true", resolved.Name, resolved.Path, resolved.Name)
	}

	a.log().Info("model not found, downloading", zap.String("model", resolved.Name), zap.String("destination", resolved.Path))
	if err := download.DownloadFile(ctx, download.Options{
		URL:            resolved.URL,
		Destination:    resolved.Path,
		ExpectedSHA256: resolved.SHA256,
		NoProgress:     a.noProgress,
		Logger:         a.log(),
	}); err != nil {
		return whisper.ResolvedModel{}, fmt.Errorf("download model %q: %w", resolved.Name, err)
	}

	resolved.NeedsDownload = false
	return resolved, nil
}
