package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MyelinBots/heavenly-go/internal/services/crisis"
	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [text]",
		Short: "Print the crisis level of a message and the keywords it matched",
		Long:  "Classifies the arguments, or stdin when no arguments are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = strings.TrimSpace(string(b))
			}
			if text == "" {
				return errors.New("nothing to classify")
			}

			level := crisis.Detect(text)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "level: %s\n", level)
			fmt.Fprintf(out, "escalate: %t\n", level.ShouldEscalate())
			if matched := crisis.Match(text).All(); len(matched) > 0 {
				fmt.Fprintf(out, "matched: %s\n", strings.Join(matched, ", "))
			}
			return nil
		},
	}
}
