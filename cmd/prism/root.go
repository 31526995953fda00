package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prism",
	Short: "Analyze documents and commit them to a vector index",
	Long: `Prism runs a multi-stage analysis pipeline over a document set:
loading, deduplication, parallel LLM enrichment, embedding, and a
single-batch commit into a vector database collection.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}
