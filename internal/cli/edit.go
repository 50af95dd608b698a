package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mosaic/pkg/dataset"
	"github.com/matzehuels/mosaic/pkg/mosaic"
)

// editCommand creates the interactive editor command.
func (c *CLI) editCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "edit [file|name]",
		Short: "Edit chart values interactively with a live preview",
		Long: `Edit chart values interactively with a live preview.

Select a category, subcategory value or y-category with the arrow keys and
change it with +/-. The terminal preview shows the recomputed layout after
every change. Press w to save the dataset back to the file (or to --output).

Built-in datasets such as "caffeine" can be edited when --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "save to this file instead of the input")
	return cmd
}

func (c *CLI) runEdit(cmd *cobra.Command, input, output string) error {
	def, builtin := dataset.Builtin(input)
	if !builtin {
		var err error
		if def, err = dataset.ReadFile(input); err != nil {
			return err
		}
		if output == "" {
			output = input
		}
	}
	if err := dataset.Validate(def); err != nil {
		return err
	}
	chart, err := def.Build()
	if err != nil {
		return fmt.Errorf("build chart: %w", err)
	}

	var save SaveFunc
	if output != "" {
		save = saveDefinition(output)
	}

	p := tea.NewProgram(NewEditorModel(chart, save), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("editor: %w", err)
	}

	if m, ok := final.(EditorModel); ok && m.Dirty {
		printWarning("Unsaved changes discarded")
		return nil
	}
	if output != "" {
		printSuccess("Editor closed")
		printFile(output)
	}
	return nil
}

// saveDefinition returns a SaveFunc writing validated definitions to path in
// the format implied by its extension.
func saveDefinition(path string) SaveFunc {
	return func(def mosaic.Definition) error {
		if err := dataset.Validate(def); err != nil {
			return err
		}
		return dataset.WriteFile(def, path)
	}
}
