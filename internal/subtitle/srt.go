package subtitle

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// FormatTimestamp renders an offset in seconds as an SRT timestamp
// (HH:MM:SS,mmm). The offset is rounded to the nearest millisecond;
// negative offsets clamp to zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}

	total := int64(math.Round(seconds * 1000))
	hours := total / 3_600_000
	minutes := (total % 3_600_000) / 60_000
	secs := (total % 60_000) / 1000
	millis := total % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// WriteSRT serializes a transcript into an SRT file at path: cues numbered
// from 1 in segment order, a timestamp range per cue, and a blank line
// between cues. An empty transcript produces an empty file.
func WriteSRT(transcript Transcript, path string) error {
	var b strings.Builder
	for i, segment := range transcript.Segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n",
			i+1,
			FormatTimestamp(segment.Start),
			FormatTimestamp(segment.End),
			segment.Text,
		)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// ParseSRT reads an SRT file back into a transcript. Cue numbers are
// ignored; ordering follows the file. CRLF line endings are accepted.
func ParseSRT(path string) (Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return Transcript{}, fmt.Errorf("open srt: %w", err)
	}
	defer f.Close()

	var (
		transcript Transcript
		scanner    = bufio.NewScanner(f)
		lineNo     int
	)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		cue, ok, err := scanCue(scanner, &lineNo)
		if err != nil {
			return Transcript{}, fmt.Errorf("parse %s: %w", path, err)
		}
		if !ok {
			break
		}
		transcript.Segments = append(transcript.Segments, cue)
	}

	if err := scanner.Err(); err != nil {
		return Transcript{}, fmt.Errorf("read srt: %w", err)
	}

	return transcript, nil
}

func scanCue(scanner *bufio.Scanner, lineNo *int) (Segment, bool, error) {
	// Skip blank lines between cues.
	var indexLine string
	for {
		if !scanner.Scan() {
			return Segment{}, false, nil
		}
		*lineNo++
		indexLine = strings.TrimSpace(scanner.Text())
		if indexLine != "" {
			break
		}
	}

	if _, err := strconv.Atoi(indexLine); err != nil {
		return Segment{}, false, fmt.Errorf("line %d: expected cue number, got %q", *lineNo, indexLine)
	}

	if !scanner.Scan() {
		return Segment{}, false, fmt.Errorf("line %d: cue truncated before timestamps", *lineNo)
	}
	*lineNo++

	start, end, err := parseTimestampRange(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return Segment{}, false, fmt.Errorf("line %d: %w", *lineNo, err)
	}

	var textLines []string
	for scanner.Scan() {
		*lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			break
		}
		textLines = append(textLines, line)
	}

	return Segment{Start: start, End: end, Text: strings.Join(textLines, "\n")}, true, nil
}

func parseTimestampRange(line string) (float64, float64, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected timestamp range, got %q", line)
	}

	start, err := parseTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err := parseTimestamp(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, fmt.Errorf("cue ends before it starts: %q", line)
	}

	return start, end, nil
}

func parseTimestamp(value string) (float64, error) {
	var hours, minutes, secs, millis int64
	if _, err := fmt.Sscanf(value, "%02d:%02d:%02d,%03d", &hours, &minutes, &secs, &millis); err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if minutes > 59 || secs > 59 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}

	total := hours*3_600_000 + minutes*60_000 + secs*1000 + millis
	return float64(total) / 1000, nil
}
