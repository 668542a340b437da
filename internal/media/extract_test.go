package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFakeFFmpeg(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestExtractAudioMissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "out.wav")

	x := &Extractor{Executable: "ffmpeg"}
	err := x.ExtractAudio(context.Background(), filepath.Join(dir, "missing.mp4"), audioPath)
	require.Error(t, err)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	require.NoFileExists(t, audioPath)
}

func TestExtractAudioMissingFFmpeg(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	videoPath := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(videoPath, []byte("fake video"), 0o644))

	x := &Extractor{Executable: filepath.Join(dir, "no-such-ffmpeg")}
	err := x.ExtractAudio(context.Background(), videoPath, filepath.Join(dir, "out.wav"))
	require.ErrorIs(t, err, ErrFFmpegNotFound)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
}

func TestExtractAudioSuccess(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	videoPath := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(videoPath, []byte("fake video"), 0o644))
	audioPath := filepath.Join(dir, "clip.wav")

	// Fake ffmpeg writes its last argument (the output path).
	fake := writeFakeFFmpeg(t, `for arg in "$@"; do out="$arg"; done
printf 'RIFF' > "$out"
`)

	x := &Extractor{Executable: fake}
	require.NoError(t, x.ExtractAudio(context.Background(), videoPath, audioPath))
	require.FileExists(t, audioPath)
}

func TestExtractAudioNonZeroExitCapturesStderrAndRemovesPartialOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	videoPath := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(videoPath, []byte("fake video"), 0o644))
	audioPath := filepath.Join(dir, "clip.wav")

	fake := writeFakeFFmpeg(t, `for arg in "$@"; do out="$arg"; done
printf 'partial' > "$out"
echo 'clip.mp4: Invalid data found when processing input' >&2
exit 1
`)

	x := &Extractor{Executable: fake}
	err := x.ExtractAudio(context.Background(), videoPath, audioPath)
	require.Error(t, err)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	require.Contains(t, extractionErr.Stderr, "Invalid data")
	require.NoFileExists(t, audioPath)
}

func TestNewExtractorUsesEnvOverride(t *testing.T) {
	t.Setenv("VIDSCRIBE_FFMPEG_PATH", "/opt/ffmpeg/bin/ffmpeg")

	x := NewExtractor(nil)
	require.Equal(t, "/opt/ffmpeg/bin/ffmpeg", x.Executable)
}
