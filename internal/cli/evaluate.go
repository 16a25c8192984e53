package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/datar-psa/answereval"
	"github.com/datar-psa/answereval/internal/bootstrap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var evalFlags struct {
	answer    string
	reference string
	question  string
	mode      string
	examples  []string
	threshold int
	asJSON    bool
}

//nolint:gochecknoglobals // Cobra boilerplate
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one answer and print the result",
	Long: `Evaluates a single answer against its reference.

Examples:
  # Definition question
  answereval evaluate --answer "machine learning lets computers learn from data" \
    --reference "Machine learning is a subset of AI that enables computers to learn from data."

  # Examples question
  answereval evaluate --mode examples --answer "Siri and Netflix" \
    --example Siri --example "Netflix recommendations" --example "Tesla Autopilot"`,
	RunE: runEvaluate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringVarP(&evalFlags.answer, "answer", "a", "", "candidate answer")
	evaluateCmd.Flags().StringVarP(&evalFlags.reference, "reference", "r", "", "expected answer")
	evaluateCmd.Flags().StringVarP(&evalFlags.question, "question", "q", "", "question that was asked")
	evaluateCmd.Flags().StringVar(&evalFlags.mode, "mode", "definition", "definition or examples")
	evaluateCmd.Flags().StringArrayVar(&evalFlags.examples, "example", nil, "acceptable example (repeatable)")
	evaluateCmd.Flags().IntVar(&evalFlags.threshold, "threshold", 0, "passing score (default 70)")
	evaluateCmd.Flags().BoolVar(&evalFlags.asJSON, "json", false, "print the full result as JSON")
	_ = evaluateCmd.MarkFlagRequired("answer")
}

func runEvaluate(cmd *cobra.Command, _ []string) (err error) {
	app, err := loadApp(cmd.Context(), bootstrap.Options{SkipMetrics: true})
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Evaluator.Evaluate(cmd.Context(), answereval.Request{
		Answer:            evalFlags.answer,
		Reference:         evalFlags.reference,
		Question:          evalFlags.question,
		Mode:              answereval.Mode(evalFlags.mode),
		ReferenceExamples: evalFlags.examples,
		Threshold:         evalFlags.threshold,
	})
	if err != nil {
		return err
	}

	if evalFlags.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printResult(cmd.OutOrStdout(), result)
	return nil
}

func printResult(w io.Writer, r answereval.Result) {
	verdict := "INCORRECT"
	if r.IsCorrect {
		verdict = "CORRECT"
	}
	fmt.Fprintf(w, "%s  score %d/100  confidence %.2f\n", verdict, r.Score, r.Confidence)
	fmt.Fprintf(w, "%s\n", r.Feedback)
	printList(w, "matched", r.Similarities)
	printList(w, "missing", r.MissingConcepts)
	printList(w, "valid examples", r.ValidExamples)
	printList(w, "suggestions", r.Suggestions)
	fmt.Fprintf(w, "tier %d via %s in %s", r.Telemetry.Tier, r.Telemetry.Method, r.Telemetry.Duration.Round(time.Millisecond))
	if r.Telemetry.FallbackReason != "" {
		fmt.Fprintf(w, " (%s)", r.Telemetry.FallbackReason)
	}
	fmt.Fprintln(w)
}

func printList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s: %s\n", label, strings.Join(items, ", "))
}
