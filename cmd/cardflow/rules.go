package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joshsymonds/cardflow/internal/cli"
	"github.com/joshsymonds/cardflow/internal/model"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage classification rules",
		Long:  `List, add, enable, disable, and delete natural-language classification rules.`,
	}

	cmd.PersistentFlags().StringP("user", "u", "", "User ID whose rules to manage")
	_ = viper.BindPFlag("user.id", cmd.PersistentFlags().Lookup("user"))

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesEnableCmd())
	cmd.AddCommand(rulesDisableCmd())
	cmd.AddCommand(rulesDeleteCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all rules",
		Long: `Display all classification rules in matcher precedence order.

Rules are sorted by priority ascending; a lower priority value means the
rule's terminal action wins conflicts with later rules.`,
		RunE: runRulesList,
	}
}

func runRulesList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	userID, err := requireUserID()
	if err != nil {
		return err
	}

	db, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	rules, err := db.ListRules(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list rules: %w", err)
	}

	if len(rules) == 0 {
		fmt.Println(cli.InfoStyle.Render("No rules found. Use 'cardflow rules add' to create one.")) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatTitle("Classification Rules")) //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil {
			slog.Error("failed to flush table writer", "error", flushErr)
		}
	}()

	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("ID"),
		cli.HeaderStyle.Render("Priority"),
		cli.HeaderStyle.Render("Enabled"),
		cli.HeaderStyle.Render("Name"),
		cli.HeaderStyle.Render("Prompt")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, rule := range rules {
		enabled := cli.SuccessIcon
		if !rule.Enabled {
			enabled = cli.SubtleStyle.Render("-")
		}
		if _, err := fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			rule.ID, rule.Priority, enabled, rule.Name, truncate(rule.Prompt, 60)); err != nil {
			return fmt.Errorf("failed to write rule row: %w", err)
		}
	}

	return nil
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new rule",
		Long: `Create a classification rule from a natural-language prompt.

Example:
  cardflow rules add "Auto-approve Acme" \
    --prompt "Approve any invoice from Acme Corp under $500" \
    --priority 10`,
		Args: cobra.ExactArgs(1),
		RunE: runRulesAdd,
	}

	cmd.Flags().StringP("prompt", "p", "", "Natural-language matching criterion (required)")
	cmd.Flags().Int("priority", 100, "Rule priority (lower wins conflicts)")
	cmd.Flags().Bool("disabled", false, "Create the rule disabled")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	userID, err := requireUserID()
	if err != nil {
		return err
	}

	prompt, _ := cmd.Flags().GetString("prompt")
	priority, _ := cmd.Flags().GetInt("priority")
	disabled, _ := cmd.Flags().GetBool("disabled")

	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("rule prompt cannot be empty")
	}

	db, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	now := time.Now()
	rule := model.ClassificationRule{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      args[0],
		Prompt:    prompt,
		Enabled:   !disabled,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := db.SaveRule(ctx, &rule); err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("created rule %s (%s)", rule.Name, rule.ID))) //nolint:forbidigo // User-facing output
	return nil
}

func rulesEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <rule-id>",
		Short: "Enable a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setRuleEnabled(cmd, args[0], true)
		},
	}
}

func rulesDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <rule-id>",
		Short: "Disable a rule without deleting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setRuleEnabled(cmd, args[0], false)
		},
	}
}

func setRuleEnabled(cmd *cobra.Command, ruleID string, enabled bool) error {
	ctx := cmd.Context()

	db, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	if err := db.SetRuleEnabled(ctx, ruleID, enabled); err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("rule %s %s", ruleID, state))) //nolint:forbidigo // User-facing output
	return nil
}

func rulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <rule-id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() {
				if closeErr := db.Close(); closeErr != nil {
					slog.Error("failed to close storage", "error", closeErr)
				}
			}()

			if err := db.DeleteRule(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete rule: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("deleted rule %s", args[0]))) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
