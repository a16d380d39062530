package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/querybar/internal/completion"
	"github.com/oakwood-commons/querybar/internal/typeahead"
)

func newSuggestCmd(root *rootFlags) *cobra.Command {
	var (
		text   string
		caret  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "suggest [file...]",
		Short: "Print the suggestions the query bar would offer",
		Long: `suggest prints the completions and recent searches offered for --text
with the caret at --caret (default: end of text).`,
		Example: `  querybar suggest logs.ndjson --text 'ag'
  querybar suggest logs.ndjson --text 'agent: and status:2' --caret 6 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output, outputYAML, outputJSON, outputCount); err != nil {
				return err
			}
			var stdin io.Reader
			if len(args) == 0 && stdinIsPiped() {
				stdin = cmd.InOrStdin()
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, root, args, stdin)
			if err != nil {
				return err
			}
			defer a.Close()

			lang, err := a.language(ctx, root.language.String())
			if err != nil {
				return err
			}
			pos := caret
			if pos < 0 {
				pos = len([]rune(text))
			}
			items, err := typeahead.NewFetcher(a.registry, a.catalog).Fetch(ctx, a.recent(lang), typeahead.FetchRequest{
				Language:  lang,
				Targets:   a.targets,
				Text:      text,
				Selection: typeahead.Caret(pos).Clamp(len([]rune(text))),
			})
			if err != nil {
				return err
			}
			if output == outputCount {
				return writeValue(cmd.OutOrStdout(), len(items), outputYAML)
			}
			if items == nil {
				items = []completion.Suggestion{}
			}
			return writeValue(cmd.OutOrStdout(), items, output)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "query text being typed")
	cmd.Flags().IntVar(&caret, "caret", -1, "caret position in runes (default: end of text)")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml|json|count")
	return cmd
}
