package subtitle

import (
	"os"
	"strings"
)

// WriteTXT serializes a transcript into a plain-text file at path: each
// segment's text separated by one blank line, in segment order. An empty
// transcript produces an empty file.
func WriteTXT(transcript Transcript, path string) error {
	var content string
	if len(transcript.Segments) > 0 {
		texts := make([]string, 0, len(transcript.Segments))
		for _, segment := range transcript.Segments {
			texts = append(texts, segment.Text)
		}
		content = strings.Join(texts, "\n\n") + "\n"
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
