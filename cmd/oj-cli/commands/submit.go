package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"ojassist/lib/scrapers/openjudge/extract"
	ojsubmit "ojassist/lib/scrapers/openjudge/submit"

	"github.com/spf13/cobra"
)

var submitLanguage string

func init() {
	submitCmd.Flags().StringVar(&submitLanguage, "language", "G++", "submission language as the judge names it")
	rootCmd.AddCommand(submitCmd)
}

func findProblem(ctx context.Context, group, practiceID, problemID string) (extract.Problem, error) {
	problems, err := browseClient.ProblemList(ctx, group, practiceID)
	if err != nil {
		return extract.Problem{}, err
	}
	for _, p := range problems {
		if p.ID == problemID {
			return p, nil
		}
	}
	return extract.Problem{}, fmt.Errorf("problem %q not found in practice %q", problemID, practiceID)
}

var submitCmd = &cobra.Command{
	Use:   "submit <group> <practice> <problem> <source file>",
	Short: "Submits a solution and watches the verdict.",
	Args:  cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		source, err := os.ReadFile(args[3])
		if err != nil {
			log.Fatal(err)
		}
		problem, err := findProblem(ctx, args[0], args[1], args[2])
		if err != nil {
			log.Fatal(err)
		}

		result, err := submitClient.Submit(ctx, problem, string(source), submitLanguage)
		if err != nil {
			log.Fatal(err)
		}
		if result.Redirect == "" {
			fmt.Println("submitted, but the judge returned no status page to watch")
			return
		}

		status, err := submitClient.Poll(ctx, args[0], result.Redirect, func(s extract.SubmissionStatus) {
			fmt.Printf("status: %s\n", s.Status)
		})
		if errors.Is(err, ojsubmit.ErrPollExhausted) {
			fmt.Println("still pending, check the judge later")
			return
		}
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("verdict: %s", status.Status)
		if status.Time != "" || status.Memory != "" {
			fmt.Printf(" (%s, %s)", status.Time, status.Memory)
		}
		fmt.Println()
		if status.ErrorMessage != "" {
			fmt.Printf("\n%s\n", status.ErrorMessage)
		}
	},
}
