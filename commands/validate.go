package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hookdsh/hookd/internal/config"
	"github.com/hookdsh/hookd/internal/event"
)

// NewValidateCmd checks the hook configuration and reports every rule that
// would be disabled at session start.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the hook configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFlag
			if path == "" {
				path = config.Discover()
			}
			if path == "" {
				fmt.Println("no hooks.yaml found; hookd will run with zero hooks")
				return nil
			}

			cfg, cerrs, err := config.Load(path)
			if err != nil {
				return err
			}

			fmt.Printf("config: %s\n", path)
			for _, et := range event.Types {
				if rules := cfg.Rules[et]; len(rules) > 0 {
					fmt.Printf("  %-13s %d rule(s)\n", et, len(rules))
					for _, rule := range rules {
						blocking := ""
						if rule.Blocking {
							blocking = " [blocking]"
						}
						fmt.Printf("    %-24s matcher=%q timeout=%s%s\n",
							rule.Command, rule.Matcher.String(), rule.Timeout, blocking)
					}
				}
			}
			if len(cfg.Protected) > 0 {
				fmt.Printf("  protected paths: %d\n", len(cfg.Protected))
				for _, spec := range cfg.Protected {
					fmt.Printf("    %-6s %s\n", spec.Mode, spec.Pattern)
				}
			}

			if len(cerrs) > 0 {
				for _, cerr := range cerrs {
					fmt.Printf("  DISABLED %s\n", cerr)
				}
				return fmt.Errorf("%d rule(s) disabled", len(cerrs))
			}

			fmt.Println("ok")
			return nil
		},
	}
}
