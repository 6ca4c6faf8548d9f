package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdulachik/cinetrivia/internal/actions"
)

var (
	recommendMood   string
	recommendGenres []string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Ask the AI for a movie recommendation",
	Long: `Ask the configured AI provider to recommend a movie for a mood,
one or more genres, or both.`,
	Example: `  cinetrivia recommend --mood Funny
  cinetrivia recommend --genre Action --genre Sci-Fi`,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().StringVar(&recommendMood, "mood", "", "mood to match")
	recommendCmd.Flags().StringSliceVar(&recommendGenres, "genre", nil, "genre to match (repeatable)")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	form := actions.RecommendForm{Mood: recommendMood, Genres: recommendGenres}
	if err := form.Validate(); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Service.Recommend(cmd.Context(), "", form)
	if err != nil {
		return fmt.Errorf("get recommendation: %w", err)
	}

	rec := res.Recommendation
	fmt.Printf("Looking for %s:\n\n", res.Phrase)
	fmt.Printf("%s (%d)\n", rec.Title, rec.Year)
	fmt.Printf("  Genre:  %s\n", rec.Genre)
	fmt.Printf("  Rating: %.1f  %s\n", rec.Rating, rec.AgeRating)
	fmt.Printf("\n%s\n", rec.Description)
	if res.Poster.Fallback {
		fmt.Printf("\nPoster: placeholder (%s)\n", res.Poster.Reason)
	}
	return nil
}
