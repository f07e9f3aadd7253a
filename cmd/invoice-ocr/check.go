package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/garyjia/vat-invoice-ocr/internal/extraction"
)

var checkFlags struct {
	engine string
	model  string
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Send a minimal request to verify provider credentials and connectivity",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkFlags.engine, "engine", extraction.DefaultEngine, "engine to probe (gemini or gpt)")
	checkCmd.Flags().StringVar(&checkFlags.model, "model", "", "model name or alias")
}

func runCheck(cmd *cobra.Command, args []string) error {
	engine, err := extraction.ParseEngine(checkFlags.engine)
	if err != nil {
		return err
	}
	model := extraction.ResolveModel(engine, checkFlags.model)

	c, cleanup, err := bootstrap(cmd.Context(), "stderr")
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Engine: %s\nModel:  %s\n", engine, model)

	start := time.Now()
	reply, err := c.Client().Ping(cmd.Context(), engine, model)
	if err != nil {
		fmt.Fprintf(out, "FAILED after %v\n", time.Since(start).Round(time.Millisecond))
		return err
	}

	fmt.Fprintf(out, "OK in %v\nReply:  %s\n", time.Since(start).Round(time.Millisecond), reply)
	return nil
}
