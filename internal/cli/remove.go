package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cegaiel/mappacksync/pkg/sync"
)

// NewRemoveCommand creates the remove command
func NewRemoveCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <install-folder>",
		Short: "Remove the installed map pack from a game install folder",
		Long: `Delete every file listed by the current manifest from the install
folder, prune the directories left empty and restore the client
preferences to the stock map location. Files you placed under
resources_override/mappack yourself are left alone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(fmt.Sprintf("Remove the map pack from %s?", args[0])) {
				fmt.Println("Aborted.")
				return nil
			}
			return runReconcile(cmd, args[0], sync.ModeRemove)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	addRunFlags(cmd)

	return cmd
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
