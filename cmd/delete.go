package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bakerypay/payroll"
	"bakerypay/storage"
)

var (
	deletePromptInput  io.Reader = os.Stdin
	deletePromptOutput io.Writer = os.Stdout
)

var deleteCmd = &cobra.Command{
	Use:   "delete <period-id>",
	Short: "Delete one payroll period with its entries and stored files",
	Long: `Destructive period cleanup command.

Removes the period, every employee row of the period, the file records pointing at it
and the stored workbooks. Before deletion, an interactive security prompt requires typing exactly "Y".`,
	Example: `
  # Delete period 7 (requires interactive confirmation)
  bakerypay delete 7
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parsePeriodID(args[0])
		if err != nil {
			return err
		}

		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return deletePeriod(cmd.Context(), a.gateway, id, deletePromptInput, deletePromptOutput)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func deletePeriod(ctx context.Context, gateway *storage.Gateway, id int64, input io.Reader, output io.Writer) error {
	period, err := gateway.Store.GetPeriod(ctx, id)
	if err != nil {
		if errors.Is(err, payroll.ErrPeriodMissing) {
			return fmt.Errorf("payroll period %d not found", id)
		}
		return err
	}

	label := fmt.Sprintf("%s %s to %s", period.Branch, period.Start.Format(time.DateOnly), period.End.Format(time.DateOnly))
	confirmed, err := confirmDeletePrompt(input, output, label)
	if err != nil {
		return err
	}
	if !confirmed {
		return fmt.Errorf("delete aborted: confirmation was not 'Y'")
	}

	removed, err := gateway.DeletePeriod(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "Deleted payroll period %d (%s) and %d stored file(s)\n", id, label, len(removed))
	return nil
}

func confirmDeletePrompt(input io.Reader, output io.Writer, label string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("delete confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "Delete payroll period %q? Type Y to confirm: ", label); err != nil {
		return false, fmt.Errorf("write delete confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			line = strings.TrimSpace(line)
			return line == "Y", nil
		}
		return false, fmt.Errorf("read delete confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}
