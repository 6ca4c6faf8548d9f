package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog and database statistics",
	Long:  `Display statistics about the catalog and the stored ratings.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ratings, err := a.Store.CountRatings(ctx)
	if err != nil {
		return err
	}

	byGenre := make(map[string]int)
	needsPoster := 0
	for _, m := range a.Catalog.All() {
		byGenre[m.Genre]++
		if m.NeedsPoster() {
			needsPoster++
		}
	}
	genres := make([]string, 0, len(byGenre))
	for g := range byGenre {
		genres = append(genres, g)
	}
	sort.Strings(genres)

	source := a.Config.CatalogPath
	if source == "" {
		source = "embedded"
	}

	fmt.Println("=== CineTrivia Statistics ===")
	fmt.Println()
	fmt.Printf("Database: %s\n", a.Config.DatabasePath)
	fmt.Printf("Catalog:  %s\n", source)
	fmt.Println()
	fmt.Println("Movies:")
	fmt.Printf("  Total: %d\n", a.Catalog.Len())
	fmt.Printf("  Placeholder posters: %d\n", needsPoster)
	fmt.Println()
	fmt.Println("  By genre:")
	for _, g := range genres {
		fmt.Printf("    %s: %d\n", g, byGenre[g])
	}
	fmt.Println()
	fmt.Println("Activity:")
	fmt.Printf("  Ratings stored: %d\n", ratings)
	fmt.Println()

	return nil
}
