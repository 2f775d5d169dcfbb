package output

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
)

// ConsoleWriter writes search reports to the console.
type ConsoleWriter struct{}

// Write outputs the search report to the console.
func (w *ConsoleWriter) Write(report *Report, options Options) error {
	commits := limit(report.Commits, options)

	if options.IDOnly {
		for _, c := range commits {
			fmt.Println(c.ID)
		}
		return nil
	}

	color.Green("Commit Search Results")
	fmt.Printf("Repository: %s\n", report.RepoPath)
	fmt.Printf("Branch: %s\n", report.Branch)
	if report.Origin != nil {
		fmt.Printf("Origin: %s %s\n", report.Origin.ShortID(), truncateMessage(report.Origin.Subject(), 60))
	}
	fmt.Printf("Commits found: %d\n\n", len(report.Commits))

	if len(commits) == 0 {
		fmt.Println("No commits in range.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSHA\tDate\tAuthor\tMessage")
	for i, c := range commits {
		sha := c.ShortID()
		if c.IsMerge() {
			sha = color.YellowString(sha)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			i+1,
			sha,
			c.When.Format("2006-01-02"),
			c.Author.Name,
			truncateMessage(c.Subject(), 60),
		)
	}
	tw.Flush()

	return nil
}
