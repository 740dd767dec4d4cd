package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hardikSrivastav/cal.it/internal/interpret"
)

var interpretMode string

var interpretCmd = &cobra.Command{
	Use:   "interpret <message>",
	Short: "Interpret a food message without running the server",
	Long: "Runs the interpretation pipeline once against the given message " +
		"and prints the parsed food and nutrition estimate as JSON.",
	Args: cobra.MinimumNArgs(1),
	RunE: runInterpret,
}

func init() {
	interpretCmd.Flags().StringVar(&interpretMode, "mode", "",
		"Interpretation mode: ai or api (overrides config)")
}

func runInterpret(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mode := cfg.Interpreter.Mode
	if interpretMode != "" {
		mode = interpretMode
	}

	// One-shot runs are interactive; keep log noise off stdout.
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	interpreter := interpret.NewInterpreter(
		interpret.Mode(mode), buildBackends(cfg), logger)

	message := strings.Join(args, " ")
	result, err := interpreter.Interpret(cmd.Context(), message)
	if err != nil {
		if errors.Is(err, interpret.ErrNoEstimateFound) {
			return fmt.Errorf("no estimate found; try: %s",
				strings.Join(interpret.ClarificationHints(message), ", "))
		}
		return err
	}

	return printJSON(cmd.OutOrStdout(), result)
}

// printJSON marshals v to indented JSON and writes it to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
