package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var funfactCmd = &cobra.Command{
	Use:   "funfact <title>",
	Short: "Get a fun fact about a movie",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFunFact,
}

func init() {
	rootCmd.AddCommand(funfactCmd)
}

func runFunFact(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	fact, err := a.Service.FunFact(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("get fun fact: %w", err)
	}

	fmt.Println(fact)
	return nil
}
