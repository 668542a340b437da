package whisper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vidscribe/vidscribe/internal/subtitle"
)

const sampleEngineOutput = `{
  "result": {"language": "en"},
  "transcription": [
    {"offsets": {"from": 0, "to": 2500}, "text": " Hello, world!"},
    {"offsets": {"from": 2500, "to": 5000}, "text": " This is a test."},
    {"offsets": {"from": 5000, "to": 5200}, "text": "   "}
  ]
}`

func TestParseEngineOutput(t *testing.T) {
	t.Parallel()

	transcript, err := parseEngineOutput([]byte(sampleEngineOutput))
	require.NoError(t, err)
	require.Equal(t, "en", transcript.Language)
	require.Equal(t, []subtitle.Segment{
		{Start: 0, End: 2.5, Text: "Hello, world!"},
		{Start: 2.5, End: 5, Text: "This is a test."},
	}, transcript.Segments)
}

func TestParseEngineOutputRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := parseEngineOutput([]byte("not json"))
	require.Error(t, err)
}

func TestTranscribeRunsEngineAndParsesJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "clip.wav")
	require.NoError(t, os.WriteFile(audioPath, []byte("RIFF"), 0o644))
	modelPath := filepath.Join(dir, "ggml-base.bin")
	require.NoError(t, os.WriteFile(modelPath, []byte("model"), 0o644))

	// Fake engine writes the JSON payload next to the -of base path.
	script := `#!/bin/sh
out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-of" ]; then out="$arg"; fi
  prev="$arg"
done
cat > "$out.json" <<'EOF'
` + sampleEngineOutput + `
EOF
`
	enginePath := filepath.Join(dir, "whisper-cli")
	require.NoError(t, os.WriteFile(enginePath, []byte(script), 0o755))

	engine := &CLIEngine{Executable: enginePath}
	transcript, err := engine.Transcribe(context.Background(), TranscriptionRequest{
		AudioPath: audioPath,
		ModelPath: modelPath,
		Language:  "auto",
	})
	require.NoError(t, err)
	require.Equal(t, "en", transcript.Language)
	require.Len(t, transcript.Segments, 2)
	require.Equal(t, "Hello, world!", transcript.Segments[0].Text)
}

func TestTranscribeMissingAudioFailsBeforeRunningEngine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	enginePath := filepath.Join(dir, "whisper-cli")
	require.NoError(t, os.WriteFile(enginePath, []byte("#!/bin/sh\nexit 7\n"), 0o755))

	engine := &CLIEngine{Executable: enginePath}
	_, err := engine.Transcribe(context.Background(), TranscriptionRequest{
		AudioPath: filepath.Join(dir, "missing.wav"),
		ModelPath: filepath.Join(dir, "model.bin"),
	})
	require.Error(t, err)

	var transcriptionErr *TranscriptionError
	require.ErrorAs(t, err, &transcriptionErr)
}

func TestTranscribeEngineFailureCapturesStderr(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "clip.wav")
	require.NoError(t, os.WriteFile(audioPath, []byte("RIFF"), 0o644))
	modelPath := filepath.Join(dir, "model.bin")
	require.NoError(t, os.WriteFile(modelPath, []byte("model"), 0o644))

	enginePath := filepath.Join(dir, "whisper-cli")
	require.NoError(t, os.WriteFile(enginePath, []byte("#!/bin/sh\necho 'failed to load model' >&2\nexit 1\n"), 0o755))

	engine := &CLIEngine{Executable: enginePath}
	_, err := engine.Transcribe(context.Background(), TranscriptionRequest{
		AudioPath: audioPath,
		ModelPath: modelPath,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load model")

	var transcriptionErr *TranscriptionError
	require.ErrorAs(t, err, &transcriptionErr)
}
