package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

type (
	docFlags struct {
		outputDir string
	}
)

func (c *Cmd) getDocCmd() *cobra.Command {
	docCmd := &cobra.Command{
		Use:               "doc",
		Short:             "generate documentation for sqlrun",
		Long:              `generate documentation for sqlrun in several formats`,
		DisableAutoGenTag: true,
	}

	docManCmd := &cobra.Command{
		Use:   "man",
		Short: "generate man page documentation for sqlrun",
		Long:  `generate man page documentation for sqlrun`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := doc.GenManTree(c.rootCmd, &doc.GenManHeader{
				Title:   "sqlrun",
				Section: "1",
			}, c.docFlags.outputDir); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		},
		DisableAutoGenTag: true,
	}
	docCmd.AddCommand(docManCmd)

	docMdCmd := &cobra.Command{
		Use:   "md",
		Short: "generate markdown documentation for sqlrun",
		Long:  `generate markdown documentation for sqlrun`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := doc.GenMarkdownTree(c.rootCmd, c.docFlags.outputDir); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		},
		DisableAutoGenTag: true,
	}
	docCmd.AddCommand(docMdCmd)

	docCmd.PersistentFlags().StringVarP(&c.docFlags.outputDir, "output", "o", ".", "documentation output path")

	return docCmd
}
