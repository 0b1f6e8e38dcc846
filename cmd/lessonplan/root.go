package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lessonplan",
		Short: "Turn a PDF, photo, text file or web search into a lesson plan",
		Long: `lessonplan runs the same pipeline as the chat bot:
extract → summarize → generate objectives, activities and assessment → fill template.

Usage:
  lessonplan generate --pdf chapter.pdf --out plan.docx`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCmd())
	return root
}
