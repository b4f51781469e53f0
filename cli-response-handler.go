package main

import (
	"fmt"
	"io"

	"docchat/data"

	"github.com/charmbracelet/glamour"
	color "github.com/fatih/color"
)

// CliPrinter writes turns to a terminal as they are committed to a conversation.
type CliPrinter struct {
	Out    io.Writer
	Style  string
	Locate func(reference string) string
}

func (cli CliPrinter) Print(turn data.Turn) {
	if turn.IsUser() {
		color.New(color.FgHiRed, color.Bold).Fprintf(cli.Out, "You: %s\n", turn.Text)
		return
	}

	out, err := glamour.Render(turn.Text, cli.Style)
	if err != nil {
		out = turn.Text + "\n"
	}
	fmt.Fprint(cli.Out, out)

	gray := color.RGB(150, 150, 150)
	if turn.HasSource() {
		gray.Fprintf(cli.Out, "Source: %s\n", turn.Source)
	}
	if turn.HasImage() {
		evidence := turn.Image
		if cli.Locate != nil {
			evidence = cli.Locate(turn.Image)
		}
		gray.Fprintf(cli.Out, "Evidence: %s\n", evidence)
	}
}
