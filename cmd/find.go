package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

// FindCmd returns the find command.
func FindCmd() *cli.Command {
	return &cli.Command{
		Name:    "find",
		Aliases: []string{"f"},
		Usage:   "Locate the starting-point commit for the target branch",
		Flags:   commonFlags(),
		Action:  findAction,
	}
}

func findAction(c *cli.Context) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}

	id, err := ctx.Searcher.Find(c.Context)
	if err != nil {
		return err
	}

	commit, err := ctx.Backend.CommitByID(c.Context, id)
	if err != nil {
		return err
	}

	color.Green("Found starting-point commit")
	fmt.Printf("SHA: %s\n", commit.ID)
	fmt.Printf("Author: %s <%s>\n", commit.Author.Name, commit.Author.Email)
	fmt.Printf("Date: %s\n", commit.When.Format("2006-01-02 15:04:05 -0700"))
	fmt.Printf("Message: %s\n", commit.Subject())
	return nil
}
