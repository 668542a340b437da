package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExtractCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <video-file>",
		Short: "Extract the audio track of a video into a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extractFn := app.extractFn
			if extractFn == nil {
				extractFn = app.extractAudio
			}

			videoPath := filepath.Clean(args[0])
			outDir, err := app.resolveOutputDir(videoPath)
			if err != nil {
				return err
			}
			audioPath := filepath.Join(outDir, baseName(videoPath)+".wav")

			app.log().Info("extracting audio", zap.String("video", videoPath), zap.String("audio", audioPath))
			stopSpinner := startSpinner(app.progressEnabled(), "Extracting audio")
			err = extractFn(cmd.Context(), videoPath, audioPath)
			stopSpinner()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), audioPath)
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindOutputFlag(cmd, app)

	return cmd
}
