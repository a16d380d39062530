package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or clear recent searches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var output string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print recent searches, oldest first",
		Long: `list prints the recent searches of the current app. With --language only
that language's log is printed; otherwise every stored log is printed by key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output, outputYAML, outputJSON); err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, root, nil, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if root.language != "" {
				lang, err := a.language(ctx, root.language.String())
				if err != nil {
					return err
				}
				entries, err := a.recent(lang).Get(ctx)
				if err != nil {
					return err
				}
				if entries == nil {
					entries = []string{}
				}
				return writeValue(cmd.OutOrStdout(), entries, output)
			}

			keys, err := a.store.Keys(ctx)
			if err != nil {
				return err
			}
			all := make(map[string][]string, len(keys))
			for _, key := range keys {
				entries, err := a.store.Load(ctx, key)
				if err != nil {
					return err
				}
				all[key] = entries
			}
			return writeValue(cmd.OutOrStdout(), all, output)
		},
	}
	listCmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml|json")

	var all bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete recent searches for the current language, or all with --all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, root, nil, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if all {
				keys, err := a.store.Keys(ctx)
				if err != nil {
					return err
				}
				for _, key := range keys {
					if err := a.store.Clear(ctx, key); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %d logs\n", len(keys))
				return nil
			}
			lang, err := a.language(ctx, root.language.String())
			if err != nil {
				return err
			}
			log := a.recent(lang)
			if err := log.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", log.Key())
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&all, "all", false, "clear every app and language")

	cmd.AddCommand(listCmd, clearCmd)
	return cmd
}
