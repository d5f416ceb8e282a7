package commands

import (
	"fmt"
	"log"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(practicesCmd)
	rootCmd.AddCommand(problemsCmd)
	rootCmd.AddCommand(showCmd)
}

var practicesCmd = &cobra.Command{
	Use:   "practices <group>",
	Short: "Lists the practices and contests of a group.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		practices, err := browseClient.PracticeList(cmd.Context(), args[0])
		if err != nil {
			log.Fatal(err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Name", "Kind", "Problems"})
		for _, p := range practices {
			t.AppendRow(table.Row{p.ID, p.Name, p.Kind, p.ProblemCount})
		}
		t.Render()
	},
}

var problemsCmd = &cobra.Command{
	Use:   "problems <group> <practice>",
	Short: "Lists the problems of a practice.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		problems, err := browseClient.ProblemList(cmd.Context(), args[0], args[1])
		if err != nil {
			log.Fatal(err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Title", "Ratio", "Passed", "Attempts"})
		for _, p := range problems {
			t.AppendRow(table.Row{p.ID, p.Title, p.AcceptanceRate, p.PassedCount, p.AttemptCount})
		}
		t.Render()
	},
}

var showCmd = &cobra.Command{
	Use:   "show <group> <practice> <problem>",
	Short: "Prints a problem statement.",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		problem, err := findProblem(ctx, args[0], args[1], args[2])
		if err != nil {
			log.Fatal(err)
		}
		detail, err := browseClient.ProblemDetail(ctx, problem)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("%s: %s\n", detail.ID, detail.Title)
		fmt.Printf("time limit: %s  memory limit: %s\n\n", detail.TimeLimit, detail.MemoryLimit)
		for _, section := range []struct {
			name string
			body string
		}{
			{"Description", detail.Description},
			{"Input", detail.Input},
			{"Output", detail.Output},
			{"Sample Input", detail.SampleInput},
			{"Sample Output", detail.SampleOutput},
			{"Hint", detail.Hint},
			{"Source", detail.Source},
		} {
			if section.body == "" {
				continue
			}
			fmt.Printf("## %s\n%s\n\n", section.name, section.body)
		}
	},
}
