package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mediagen/internal/backend"
	"mediagen/internal/providers/image"
)

var (
	imageBackend     string
	imageQuantity    int
	imageAspectRatio string
	imageNegative    string
)

var imageCmd = &cobra.Command{
	Use:   "image <prompt>",
	Short: "Generate one or more images",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImage,
}

func init() {
	imageCmd.Flags().StringVarP(&imageBackend, "backend", "b", string(backend.ImageQwenPlus), "Image backend")
	imageCmd.Flags().IntVarP(&imageQuantity, "quantity", "n", 1, "Number of images")
	imageCmd.Flags().StringVar(&imageAspectRatio, "aspect-ratio", "1:1", "Aspect ratio (16:9, 9:16, 4:3, 3:4, 1:1)")
	imageCmd.Flags().StringVar(&imageNegative, "negative", "", "Negative prompt")
	rootCmd.AddCommand(imageCmd)
}

func runImage(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	generator, ok := app.Images[backend.ImageBackend(imageBackend)]
	if !ok {
		return fmt.Errorf("unsupported image backend %q", imageBackend)
	}

	assets, err := generator.Generate(cmd.Context(), image.GenerateRequest{
		Prompt:         strings.Join(args, " "),
		NegativePrompt: imageNegative,
		Quantity:       imageQuantity,
		AspectRatio:    imageAspectRatio,
		Backend:        imageBackend,
		RequestID:      uuid.NewString(),
	})
	if err != nil {
		return fmt.Errorf("generate images: %w", err)
	}

	for _, asset := range assets {
		location := asset.URL
		if location == "" {
			location = asset.StorageKey
		}
		fmt.Printf("%s  %dx%d  %s\n", location, asset.Width, asset.Height, asset.Format)
	}
	return nil
}
