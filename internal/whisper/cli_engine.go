package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/vidscribe/vidscribe/internal/subtitle"
	"go.uber.org/zap"
)

// CLIEngine runs transcription through a whisper-cli binary and parses its
// JSON output into segments.
type CLIEngine struct {
	Executable string
	Logger     *zap.Logger
}

// NewCLIEngine locates whisper-cli on PATH, or uses the binary named by
// VIDSCRIBE_WHISPER_PATH when set.
func NewCLIEngine(logger *zap.Logger) (*CLIEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if override := strings.TrimSpace(os.Getenv("VIDSCRIBE_WHISPER_PATH")); override != "" {
		if err := ensureExecutable(override); err != nil {
			return nil, fmt.Errorf("VIDSCRIBE_WHISPER_PATH is not executable: %w", err)
		}
		return &CLIEngine{Executable: override, Logger: logger}, nil
	}

	executable, err := exec.LookPath("whisper-cli")
	if err != nil {
		return nil, fmt.Errorf("whisper-cli not found on PATH; install whisper.cpp or set VIDSCRIBE_WHISPER_PATH: %w", err)
	}

	return &CLIEngine{Executable: executable, Logger: logger}, nil
}

func (e *CLIEngine) Transcribe(ctx context.Context, req TranscriptionRequest) (subtitle.Transcript, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return subtitle.Transcript{}, &TranscriptionError{Err: errors.New("audio path is required")}
	}
	if strings.TrimSpace(req.ModelPath) == "" {
		return subtitle.Transcript{}, &TranscriptionError{Audio: req.AudioPath, Err: errors.New("model path is required")}
	}

	if _, err := os.Stat(req.AudioPath); err != nil {
		return subtitle.Transcript{}, &TranscriptionError{Audio: req.AudioPath, Err: fmt.Errorf("audio file not found: %w", err)}
	}

	if err := ensureExecutable(e.Executable); err != nil {
		return subtitle.Transcript{}, &TranscriptionError{Audio: req.AudioPath, Err: fmt.Errorf("whisper engine missing or not executable: %w", err)}
	}

	outBase := filepath.Join(os.TempDir(), "vidscribe-"+uuid.NewString())
	jsonOut := outBase + ".json"

	args := []string{"-m", req.ModelPath, "-f", req.AudioPath, "-oj", "-of", outBase}
	lang := strings.TrimSpace(req.Language)
	if lang != "" && lang != "auto" {
		args = append(args, "-l", lang)
	}

	cmd := exec.CommandContext(ctx, e.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	e.log().Debug("running whisper engine", zap.String("engine", e.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if errText != "" {
			err = fmt.Errorf("%w (%s)", err, errText)
		}
		return subtitle.Transcript{}, &TranscriptionError{Audio: req.AudioPath, Err: err}
	}

	defer os.Remove(jsonOut)
	payload, err := os.ReadFile(jsonOut)
	if err != nil {
		return subtitle.Transcript{}, &TranscriptionError{Audio: req.AudioPath, Err: fmt.Errorf("read whisper output: %w", err)}
	}

	transcript, err := parseEngineOutput(payload)
	if err != nil {
		return subtitle.Transcript{}, &TranscriptionError{Audio: req.AudioPath, Err: err}
	}

	if transcript.Language == "" || transcript.Language == "auto" {
		transcript.Language = lang
	}

	return transcript, nil
}

func (e *CLIEngine) log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// engineOutput mirrors the JSON that whisper-cli emits with -oj: offsets
// are integer milliseconds from the start of the audio.
type engineOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseEngineOutput(payload []byte) (subtitle.Transcript, error) {
	var parsed engineOutput
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return subtitle.Transcript{}, fmt.Errorf("parse whisper output: %w", err)
	}

	transcript := subtitle.Transcript{Language: strings.TrimSpace(parsed.Result.Language)}
	for _, entry := range parsed.Transcription {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}
		transcript.Segments = append(transcript.Segments, subtitle.Segment{
			Start: float64(entry.Offsets.From) / 1000,
			End:   float64(entry.Offsets.To) / 1000,
			Text:  text,
		})
	}

	return transcript, nil
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}
