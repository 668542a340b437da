package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vidscribe/vidscribe/internal/subtitle"
)

func TestTranscribeCommandWritesSubtitleFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "talk.wav")
	require.NoError(t, os.WriteFile(audioPath, []byte("RIFF"), 0o644))

	app := &appState{
		transcribeFn: func(_ context.Context, _ string) (subtitle.Transcript, error) {
			return fixtureTranscript, nil
		},
	}

	out := new(bytes.Buffer)
	cmd := newTranscribeCmd(app)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{audioPath})

	require.NoError(t, cmd.Execute())

	require.FileExists(t, filepath.Join(dir, "talk.srt"))
	require.FileExists(t, filepath.Join(dir, "talk.txt"))
	require.Contains(t, out.String(), filepath.Join(dir, "talk.srt"))

	txtContent, err := os.ReadFile(filepath.Join(dir, "talk.txt"))
	require.NoError(t, err)
	require.Equal(t, "Hello, world!\n\nThis is a test.\n", string(txtContent))
}

func TestTranscribeCommandHonorsOutputFlag(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "talk.wav")
	require.NoError(t, os.WriteFile(audioPath, []byte("RIFF"), 0o644))
	outDir := filepath.Join(dir, "out")

	app := &appState{
		transcribeFn: func(_ context.Context, _ string) (subtitle.Transcript, error) {
			return fixtureTranscript, nil
		},
	}

	cmd := newTranscribeCmd(app)
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--output", outDir, audioPath})

	require.NoError(t, cmd.Execute())
	require.FileExists(t, filepath.Join(outDir, "talk.srt"))
	require.FileExists(t, filepath.Join(outDir, "talk.txt"))
}

func TestTranscribeCommandPropagatesFailure(t *testing.T) {
	t.Parallel()

	transcriptionErr := errors.New("inference failed")
	app := &appState{
		transcribeFn: func(_ context.Context, _ string) (subtitle.Transcript, error) {
			return subtitle.Transcript{}, transcriptionErr
		},
	}

	cmd := newTranscribeCmd(app)
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"/tmp/audio.wav"})

	require.ErrorIs(t, cmd.Execute(), transcriptionErr)
}
