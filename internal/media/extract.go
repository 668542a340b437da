package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Whisper models expect mono 16kHz PCM input.
const (
	sampleRate = 16000
	channels   = 1
)

var ErrFFmpegNotFound = errors.New("ffmpeg not found on PATH; install ffmpeg and try again")

// ExtractionError reports a failed audio extraction.
type ExtractionError struct {
	Input  string
	Err    error
	Stderr string
}

func (e *ExtractionError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("extract audio from %s: %v (%s)", e.Input, e.Err, e.Stderr)
	}
	return fmt.Sprintf("extract audio from %s: %v", e.Input, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor demuxes the audio track of a video file into a WAV file
// suitable for transcription, by shelling out to ffmpeg.
type Extractor struct {
	Executable string
	Logger     *zap.Logger
}

// NewExtractor returns an extractor using ffmpeg from PATH, or the binary
// named by VIDSCRIBE_FFMPEG_PATH when set.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}

	executable := "ffmpeg"
	if override := strings.TrimSpace(os.Getenv("VIDSCRIBE_FFMPEG_PATH")); override != "" {
		executable = override
	}

	return &Extractor{Executable: executable, Logger: logger}
}

// ExtractAudio transcodes the audio track of videoPath into a mono 16kHz
// PCM WAV file at audioPath. No partial output file is left behind on
// failure.
func (x *Extractor) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	if strings.TrimSpace(videoPath) == "" {
		return &ExtractionError{Input: videoPath, Err: errors.New("video path is required")}
	}
	if strings.TrimSpace(audioPath) == "" {
		return &ExtractionError{Input: videoPath, Err: errors.New("audio output path is required")}
	}

	if _, err := os.Stat(videoPath); err != nil {
		return &ExtractionError{Input: videoPath, Err: fmt.Errorf("video file not found: %w", err)}
	}

	if _, err := exec.LookPath(x.Executable); err != nil {
		return &ExtractionError{Input: videoPath, Err: ErrFFmpegNotFound}
	}

	if err := os.MkdirAll(filepath.Dir(audioPath), 0o755); err != nil {
		return &ExtractionError{Input: videoPath, Err: fmt.Errorf("create output directory: %w", err)}
	}

	args := []string{
		"-nostdin", "-hide_banner", "-loglevel", "error", "-y",
		"-i", videoPath,
		"-vn",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(sampleRate),
		"-c:a", "pcm_s16le",
		audioPath,
	}

	cmd := exec.CommandContext(ctx, x.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	x.log().Debug("running ffmpeg", zap.String("executable", x.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		if removeErr := removePartialOutput(audioPath); removeErr != nil {
			x.log().Warn("failed to remove partial audio output", zap.String("path", audioPath), zap.Error(removeErr))
		}
		return &ExtractionError{Input: videoPath, Err: err, Stderr: strings.TrimSpace(stderr.String())}
	}

	return nil
}

func (x *Extractor) log() *zap.Logger {
	if x.Logger == nil {
		return zap.NewNop()
	}
	return x.Logger
}

func removePartialOutput(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
