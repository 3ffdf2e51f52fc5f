package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "emailwriter",
	Short:        "Email reply generation and analysis service",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a reply for an email read from --file or stdin",
	RunE:  runGenerate,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze an email read from --file or stdin",
	RunE:  runAnalyze,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: ./config.yaml, ./config/config.yaml, /etc/emailwriter/config.yaml)")

	for _, cmd := range []*cobra.Command{generateCmd, analyzeCmd} {
		cmd.Flags().StringP("file", "f", "", "read the email from this file instead of stdin")
		cmd.Flags().StringP("language", "l", "", "translate the result into this language")
		cmd.Flags().String("remote", "", "call a running server at this base URL instead of the upstream APIs")
	}
	generateCmd.Flags().StringP("tone", "t", "", "tone of the reply, e.g. formal or friendly")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
