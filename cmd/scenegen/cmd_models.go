package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// credentialChecker is satisfied by perception.Router.
type credentialChecker interface {
	HasCredential(modelID string) bool
}

// modelsCmd lists the model catalog
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List selectable models",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func runModels(cmd *cobra.Command, args []string) error {
	catalog := buildCatalog(cfg)
	checker, _ := newClient(catalog, cfg.LLM).(credentialChecker)
	def := catalog.Default().ID

	w := cmd.OutOrStdout()
	for _, m := range catalog.Models() {
		marker := " "
		if m.ID == def {
			marker = "*"
		}
		status := ""
		if checker != nil && !checker.HasCredential(m.ID) {
			status = labelStyle.Render(fmt.Sprintf("(no %s key)", m.Provider))
		}
		fmt.Fprintf(w, "%s %-28s %-20s %-10s %s\n", marker, m.ID, m.Label, m.Provider, status)
	}
	return nil
}
