package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joshsymonds/cardflow/internal/cli"
	"github.com/joshsymonds/cardflow/internal/model"
	"github.com/joshsymonds/cardflow/internal/service"
)

func cardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Inspect document cards",
	}

	cmd.AddCommand(cardsListCmd())
	cmd.AddCommand(cardsShowCmd())

	return cmd
}

func cardsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cards",
		Long: `Display cards with their workflow and payment status.

Examples:
  cardflow cards list --user alice
  cardflow cards list --user alice --status pending --limit 20`,
		RunE: runCardsList,
	}

	cmd.Flags().StringP("user", "u", "", "User ID whose cards to list")
	cmd.Flags().StringP("status", "s", "", "Filter by status (pending, auto, dismissed, seen)")
	cmd.Flags().Int("limit", 50, "Maximum number of cards to show")
	_ = viper.BindPFlag("user.id", cmd.Flags().Lookup("user"))

	return cmd
}

func runCardsList(cmd *cobra.Command, _ []string) error {
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

	filter := service.CardFilter{UserID: userID}
	filter.Limit, _ = cmd.Flags().GetInt("limit")
	if statusFlag, _ := cmd.Flags().GetString("status"); statusFlag != "" {
		status := model.CardStatus(statusFlag)
		switch status {
		case model.CardStatusPending, model.CardStatusAuto, model.CardStatusDismissed, model.CardStatusSeen:
		default:
			return fmt.Errorf("invalid status %q", statusFlag)
		}
		filter.Status = &status
	}

	cards, err := db.ListCards(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list cards: %w", err)
	}

	if len(cards) == 0 {
		fmt.Println(cli.InfoStyle.Render("No cards found.")) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatTitle("Cards")) //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil {
			slog.Error("failed to flush table writer", "error", flushErr)
		}
	}()

	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("ID"),
		cli.HeaderStyle.Render("Status"),
		cli.HeaderStyle.Render("Payment"),
		cli.HeaderStyle.Render("Expense Category"),
		cli.HeaderStyle.Render("Categories"),
		cli.HeaderStyle.Render("Updated")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range cards {
		c := &cards[i]
		expense := "-"
		if c.ExpenseCategory != nil {
			expense = *c.ExpenseCategory
		}
		categories := "-"
		if len(c.Categories) > 0 {
			categories = strings.Join(c.Categories, ", ")
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID,
			cli.RenderStatus(c.Status),
			string(c.PaymentStatus),
			expense,
			categories,
			c.UpdatedAt.Format("2006-01-02 15:04")); err != nil {
			return fmt.Errorf("failed to write card row: %w", err)
		}
	}

	return nil
}

func cardsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <card-id>",
		Short: "Show a card with its classification history",
		Args:  cobra.ExactArgs(1),
		RunE:  runCardsShow,
	}
}

func runCardsShow(cmd *cobra.Command, args []string) error {
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

	card, err := db.GetCard(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get card: %w", err)
	}

	doc, err := db.GetDocument(ctx, card.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	fmt.Println(cli.FormatTitle(doc.Title()))                                        //nolint:forbidigo // User-facing output
	fmt.Printf("  card:     %s\n", card.ID)                                          //nolint:forbidigo // User-facing output
	fmt.Printf("  document: %s (v%d, %s)\n", doc.ID, doc.Version, doc.DocumentType)  //nolint:forbidigo // User-facing output
	fmt.Printf("  status:   %s  payment: %s\n", cli.RenderStatus(card.Status), card.PaymentStatus) //nolint:forbidigo // User-facing output
	if card.SuggestedActionLabel != nil {
		fmt.Printf("  label:    %s\n", *card.SuggestedActionLabel) //nolint:forbidigo // User-facing output
	}
	if card.ExpenseCategory != nil {
		fmt.Printf("  expense:  %s\n", *card.ExpenseCategory) //nolint:forbidigo // User-facing output
	}
	if len(card.Categories) > 0 {
		fmt.Printf("  tags:     %s\n", strings.Join(card.Categories, ", ")) //nolint:forbidigo // User-facing output
	}
	if card.PaidAt != nil {
		fmt.Printf("  paid at:  %s\n", card.PaidAt.Format("2006-01-02 15:04")) //nolint:forbidigo // User-facing output
	}

	entries, err := db.GetClassificationLog(ctx, card.ID)
	if err != nil {
		return fmt.Errorf("failed to get classification log: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	fmt.Println() //nolint:forbidigo // User-facing output
	fmt.Println(cli.HeaderStyle.Render("Classification history")) //nolint:forbidigo // User-facing output
	for _, entry := range entries {
		fmt.Printf("  %s  %s (%d%%)\n", //nolint:forbidigo // User-facing output
			cli.SubtleStyle.Render(entry.ClassifiedAt.Format("2006-01-02 15:04")),
			entry.RuleName,
			entry.Confidence)
		for _, action := range entry.Actions {
			line := "    - " + string(action.Type)
			if action.Value != "" {
				line += ": " + action.Value
			}
			fmt.Println(cli.SubtleStyle.Render(line)) //nolint:forbidigo // User-facing output
		}
	}

	return nil
}
