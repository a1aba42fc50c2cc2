package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mlcore/hindley/internal/hostconfig"
)

var macroCmd = &cobra.Command{
	Use:   "macro",
	Short: "Manage a host macro manifest",
}

var macroAddCmd = &cobra.Command{
	Use:   "add <manifest-file> <name> <template>",
	Short: "Register a macro template in a manifest file, creating it if needed",
	Long: `add renders "{0}", "{1}", ... in template as the macro's Nth argument
form at expansion time, and persists the updated manifest back to
manifest-file.`,
	Args: cobra.ExactArgs(3),
	RunE: runMacroAdd,
}

func init() {
	rootCmd.AddCommand(macroCmd)
	macroCmd.AddCommand(macroAddCmd)
}

func runMacroAdd(cmd *cobra.Command, args []string) error {
	path, name, template := args[0], args[1], args[2]

	m, err := openOrCreateManifest(path)
	if err != nil {
		return err
	}

	updated, err := m.Register(name, template)
	if err != nil {
		return fmt.Errorf("registering macro %q: %w", name, err)
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	fmt.Printf("registered macro %q in %s\n", name, path)
	return nil
}

func openOrCreateManifest(path string) (*hostconfig.Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return hostconfig.Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return hostconfig.Load(string(data))
}
