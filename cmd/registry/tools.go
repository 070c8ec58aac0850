package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/deppfellow/training-registry/internal/config"
	"github.com/deppfellow/training-registry/internal/lib/email"
	"github.com/deppfellow/training-registry/internal/lib/utils"
)

const redacted = "[redacted]"

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	return utils.PrintJSON(cmd.OutOrStdout(), redactConfig(cfg))
}

// redactConfig returns a copy of cfg with credentials masked.
func redactConfig(cfg *config.Config) config.Config {
	out := *cfg

	if out.Database.Password != "" {
		out.Database.Password = redacted
	}
	if out.Integration.ResendAPIKey != "" {
		out.Integration.ResendAPIKey = redacted
	}
	if cfg.Observability != nil {
		obs := *cfg.Observability
		if obs.NewRelic.LicenseKey != "" {
			obs.NewRelic.LicenseKey = redacted
		}
		out.Observability = &obs
	}

	return out
}

func runEmailPreview(cmd *cobra.Command, args []string) error {
	name := email.TemplateWelcome
	if len(args) == 1 {
		name = email.Template(args[0])
	}

	data, ok := email.PreviewData[name]
	if !ok {
		return fmt.Errorf("unknown template %q (available: %v)", name, templateNames())
	}

	html, err := email.Render(name, data)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), html)
	return err
}

func templateNames() []string {
	names := make([]string, 0, len(email.PreviewData))
	for name := range email.PreviewData {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}
