package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/vidscribe/vidscribe/internal/subtitle"
	"go.uber.org/zap"
)

// runPipeline drives the three stages for one video file: extract audio,
// transcribe, write subtitle files. Each stage runs to completion before
// the next begins; the first failure aborts the run.
func (a *appState) runPipeline(ctx context.Context, videoPath string) error {
	videoPath = filepath.Clean(videoPath)
	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("video file not found: %w", err)
	}

	outDir, err := a.resolveOutputDir(videoPath)
	if err != nil {
		return err
	}

	base := baseName(videoPath)
	audioPath := a.audioWorkPath(outDir, base)

	extractFn := a.extractFn
	if extractFn == nil {
		extractFn = a.extractAudio
	}
	transcribeFn := a.transcribeFn
	if transcribeFn == nil {
		transcribeFn = a.transcribeAudio
	}

	a.log().Info("extracting audio", zap.String("video", videoPath), zap.String("audio", audioPath))
	stopSpinner := startSpinner(a.progressEnabled(), "Extracting audio")
	err = extractFn(ctx, videoPath, audioPath)
	stopSpinner()
	if err != nil {
		return err
	}

	if !a.keepAudio {
		defer func() {
			if err := os.Remove(audioPath); err != nil {
				a.log().Warn("failed to remove extracted audio", zap.String("path", audioPath), zap.Error(err))
			}
		}()
	}

	transcript, err := transcribeFn(ctx, audioPath)
	if err != nil {
		return err
	}
	a.log().Info("transcription complete",
		zap.Int("segments", len(transcript.Segments)),
		zap.String("language", transcript.Language),
	)

	srtPath := filepath.Join(outDir, base+".srt")
	txtPath := filepath.Join(outDir, base+".txt")

	if err := subtitle.WriteSRT(transcript, srtPath); err != nil {
		return err
	}
	if err := subtitle.WriteTXT(transcript, txtPath); err != nil {
		return err
	}

	fmt.Fprintln(a.outWriter(), srtPath)
	fmt.Fprintln(a.outWriter(), txtPath)
	if a.keepAudio {
		a.log().Info("audio file kept", zap.String("path", audioPath))
		fmt.Fprintln(a.outWriter(), audioPath)
	}

	return nil
}

// resolveOutputDir picks the directory output files land in: --output when
// given (created if missing), otherwise the input file's directory.
func (a *appState) resolveOutputDir(inputPath string) (string, error) {
	if strings.TrimSpace(a.outputDir) == "" {
		return filepath.Dir(inputPath), nil
	}

	outDir := filepath.Clean(a.outputDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", outDir, err)
	}
	return outDir, nil
}

// audioWorkPath decides where the extracted audio lives. When the caller
// keeps the audio it goes next to the other outputs; otherwise it is a
// uniquely named scratch file that the pipeline removes afterwards.
func (a *appState) audioWorkPath(outDir, base string) string {
	if a.keepAudio {
		return filepath.Join(outDir, base+".wav")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("vidscribe-%s.wav", uuid.NewString()))
}

func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
