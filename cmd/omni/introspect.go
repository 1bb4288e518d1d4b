package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var introspectCmd = &cobra.Command{
	Use:   "introspect",
	Short: "Show registered scanners and manifest drift",
	Long: `introspect loads every scanner category's manifest and compares it
against what actually registered, surfacing the registry's signature
guarantee: never trust documentation, trust reality.`,
	RunE: runIntrospect,
}

func runIntrospect(cmd *cobra.Command, args []string) error {
	resolver, err := newResolver()
	if err != nil {
		return fmt.Errorf("resolving infrastructure root: %w", err)
	}
	client := newDataAccessClient()
	defer client.Close()

	reg := buildRegistry(defaultScannersDir(resolver), resolver, client)

	fmt.Printf("Registered scanners (%d):\n", len(reg.Names()))
	for _, name := range reg.Names() {
		category, _ := reg.Category(name)
		fmt.Printf("  %-24s category=%s\n", name, category)
	}

	drift := reg.DetectDrift()
	if len(drift.Ghosts) == 0 && len(drift.Rogues) == 0 {
		fmt.Println("\nNo drift: every declared scanner is registered, every registered scanner is declared.")
		return nil
	}

	if len(drift.Ghosts) > 0 {
		fmt.Println("\nGhosts (declared in a manifest, never registered):")
		for _, name := range drift.Ghosts {
			fmt.Printf("  - %s\n", name)
		}
	}
	if len(drift.Rogues) > 0 {
		fmt.Println("\nRogues (registered, never declared in any manifest):")
		for _, name := range drift.Rogues {
			fmt.Printf("  - %s\n", name)
		}
	}
	return nil
}
