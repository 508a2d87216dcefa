package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mediagen/internal/backend"
	"mediagen/internal/providers/video"
)

var (
	videoDuration time.Duration
	videoPriority string
	videoBackend  string
)

var videoCmd = &cobra.Command{
	Use:   "video <prompt>",
	Short: "Generate a video clip and wait for the result",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runVideo,
}

func init() {
	videoCmd.Flags().DurationVarP(&videoDuration, "duration", "d", 8*time.Second, "Target clip duration")
	videoCmd.Flags().StringVarP(&videoPriority, "priority", "p", "cost", "Priority (speed, quality, cost)")
	videoCmd.Flags().StringVarP(&videoBackend, "backend", "b", "", "Video backend (default: selected from priority)")
	rootCmd.AddCommand(videoCmd)
}

func runVideo(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	chosen := backend.VideoBackend(videoBackend)
	if videoBackend == "" {
		sel := backend.Select(videoDuration, backend.NormalizePriority(videoPriority))
		chosen = sel.Backend
		fmt.Printf("selected %s: %s\n", sel.Backend, sel.Justification)
	}
	provider, ok := app.Videos[chosen]
	if !ok {
		return fmt.Errorf("unsupported video backend %q", chosen)
	}

	task, err := provider.Submit(cmd.Context(), video.SubmitRequest{
		Prompt:    strings.Join(args, " "),
		Duration:  videoDuration,
		Backend:   chosen,
		RequestID: uuid.NewString(),
	})
	if err != nil {
		return fmt.Errorf("submit video: %w", err)
	}
	fmt.Printf("task %s submitted\n", task.ID)

	result, err := video.PollUntilDone(cmd.Context(), provider, task, app.Config.TaskPollInterval)
	if err != nil {
		return fmt.Errorf("wait for task %s: %w", task.ID, err)
	}
	if !result.Success {
		return fmt.Errorf("generation failed (%s): %s", result.ErrorCode, result.ErrorMessage)
	}
	fmt.Println(result.OutputLocation)
	return nil
}
