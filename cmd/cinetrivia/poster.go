package main

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdulachik/cinetrivia/internal/ai"
)

var (
	posterTitle       string
	posterDescription string
	posterGenre       string
	posterOut         string
)

var posterCmd = &cobra.Command{
	Use:   "poster",
	Short: "Generate a movie poster image",
	Long: `Generate a poster with the configured AI provider and write the
image to a file. The cache and placeholder fallback are bypassed.`,
	Example: `  cinetrivia poster --title Heat --genre Crime --out heat.png`,
	RunE:    runPoster,
}

func init() {
	posterCmd.Flags().StringVar(&posterTitle, "title", "", "movie title (required)")
	posterCmd.Flags().StringVar(&posterDescription, "description", "", "short plot description")
	posterCmd.Flags().StringVar(&posterGenre, "genre", "", "movie genre")
	posterCmd.Flags().StringVarP(&posterOut, "out", "o", "poster.png", "output file")
	_ = posterCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(posterCmd)
}

func runPoster(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	slog.Info("generating poster", "title", posterTitle, "provider", a.Provider.Name())
	poster, err := a.Service.GeneratePoster(cmd.Context(), ai.PosterInput{
		Title:       posterTitle,
		Description: posterDescription,
		Genre:       posterGenre,
	})
	if err != nil {
		return fmt.Errorf("generate poster: %w", err)
	}

	data, err := decodeDataURI(poster.DataURI)
	if err != nil {
		return err
	}
	if err := os.WriteFile(posterOut, data, 0o644); err != nil {
		return fmt.Errorf("write poster: %w", err)
	}

	fmt.Printf("Wrote %s (%d bytes)\n", posterOut, len(data))
	return nil
}

// decodeDataURI returns the bytes of a base64 data URI.
func decodeDataURI(uri string) ([]byte, error) {
	_, payload, ok := strings.Cut(uri, ";base64,")
	if !ok {
		return nil, fmt.Errorf("poster is not a base64 data URI")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode poster: %w", err)
	}
	return data, nil
}
