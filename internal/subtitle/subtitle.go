package subtitle

import "fmt"

// Segment is a single timed unit of transcribed text. Times are offsets
// from the start of the audio, in seconds.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Transcript is an ordered sequence of segments plus the language the
// transcriber detected or was told to use. Segments are ordered by start
// time; producers guarantee End >= Start for every segment.
type Transcript struct {
	Language string
	Segments []Segment
}

// WriteError reports a failure to write an output file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
