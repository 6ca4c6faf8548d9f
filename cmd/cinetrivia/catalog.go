package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

)

var catalogCmd = &cobra.Command{
	Use:   "catalog [query]",
	Short: "List or search the movie catalog",
	Long: `List the movies in the catalog. With a query, only movies whose
title or genre contains it (ignoring case) are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	query := strings.Join(args, " ")
	movies := a.Catalog.Search(query)
	if len(movies) == 0 {
		fmt.Println("No movies found. Try a different search term.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tYEAR\tGENRE\tRATING\tAGE")
	for _, m := range movies {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%.1f\t%s\n", m.ID, m.Title, m.Year, m.Genre, m.Rating, m.AgeRating)
	}
	return tw.Flush()
}
