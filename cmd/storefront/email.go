package main

import (
	"fmt"
	"os"

	"github.com/deppfellow/storefront/internal/lib/email"
	"github.com/spf13/cobra"
)

func previewEmailCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:       "preview-email [template]",
		Short:     "Render an email template with sample data",
		Args:      cobra.ExactArgs(1),
		ValidArgs: templateNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := email.Template(args[0])
			data, err := email.PreviewData(name)
			if err != nil {
				return err
			}
			html, err := email.Render(name, data)
			if err != nil {
				return err
			}

			if out == "" {
				fmt.Println(html)
				return nil
			}
			return os.WriteFile(out, []byte(html), 0o644)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the HTML to a file instead of stdout")
	return cmd
}

func templateNames() []string {
	var names []string
	for _, t := range email.Templates() {
		names = append(names, string(t))
	}
	return names
}
