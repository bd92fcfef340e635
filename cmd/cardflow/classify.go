package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joshsymonds/cardflow/internal/cli"
	"github.com/joshsymonds/cardflow/internal/common"
	"github.com/joshsymonds/cardflow/internal/engine"
	"github.com/joshsymonds/cardflow/internal/model"
	"github.com/joshsymonds/cardflow/internal/service"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify pending cards against your rules",
		Long: `Run every pending card through the rule matcher and apply the
resolved actions.

By default all pending cards for the user are processed. Pass a JSON
document file with --document to ingest and classify a single new
document instead.

Examples:
  cardflow classify --user alice               # classify all pending cards
  cardflow classify --user alice -d inv.json   # ingest one document`,
		RunE: runClassify,
	}

	cmd.Flags().StringP("user", "u", "", "User ID whose rules and cards to process")
	cmd.Flags().StringP("document", "d", "", "Path to a processed document JSON file to ingest")
	cmd.Flags().Int("limit", 0, "Maximum number of pending cards to process (0 = all)")

	_ = viper.BindPFlag("user.id", cmd.Flags().Lookup("user"))
	_ = viper.BindPFlag("classify.document", cmd.Flags().Lookup("document"))
	_ = viper.BindPFlag("classify.limit", cmd.Flags().Lookup("limit"))

	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
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

	m, err := createMatcher()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			slog.Error("failed to close matcher", "error", closeErr)
		}
	}()

	eng := engine.New(db, m)

	if docPath := viper.GetString("classify.document"); docPath != "" {
		return classifyDocument(cmd, eng, docPath, userID)
	}

	return classifyPending(cmd, db, eng, userID)
}

// classifyDocument ingests a single document file and classifies its card.
func classifyDocument(cmd *cobra.Command, eng *engine.Engine, path, userID string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied input file
	if err != nil {
		return fmt.Errorf("failed to read document file: %w", err)
	}

	var doc model.ProcessedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse document file: %w", err)
	}

	card, err := eng.ProcessDocument(cmd.Context(), &doc, userID)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("card %s is now %s", card.ID, cli.RenderStatus(card.Status)))) //nolint:forbidigo // User-facing output
	return nil
}

// classifyPending runs every pending card through the engine.
func classifyPending(cmd *cobra.Command, db service.Storage, eng *engine.Engine, userID string) error {
	ctx := cmd.Context()

	pending := model.CardStatusPending
	cards, err := db.ListCards(ctx, service.CardFilter{
		UserID: userID,
		Status: &pending,
		Limit:  viper.GetInt("classify.limit"),
	})
	if err != nil {
		return fmt.Errorf("failed to list pending cards: %w", err)
	}

	if len(cards) == 0 {
		fmt.Println(cli.InfoStyle.Render("No pending cards to classify.")) //nolint:forbidigo // User-facing output
		return nil
	}

	slog.Info("Starting card classification", "pending", len(cards), "user_id", userID)

	bar := progressbar.NewOptions(len(cards),
		progressbar.OptionSetDescription("Classifying cards"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	stats := service.CompletionStats{TotalCards: len(cards)}
	start := time.Now()

	for i := range cards {
		if err := ctx.Err(); err != nil {
			slog.Warn("Classification interrupted", "processed", i, "remaining", len(cards)-i)
			return nil
		}

		updated, err := eng.ReclassifyCard(ctx, cards[i].ID)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				slog.Warn("Classification interrupted")
				return nil
			}
			stats.Failed++
			common.LogError(err, "failed to classify card", common.Fields{"card_id": cards[i].ID})
			_ = bar.Add(1)
			continue
		}

		stats.Classified++
		if updated.Status != model.CardStatusPending {
			stats.AutoResolved++
		}
		_ = bar.Add(1)
	}
	stats.Duration = time.Since(start)

	common.LogInfo("classification run finished", common.Fields{
		"total":         stats.TotalCards,
		"classified":    stats.Classified,
		"auto_resolved": stats.AutoResolved,
		"failed":        stats.Failed,
	})

	fmt.Println(cli.FormatTitle("Classification complete")) //nolint:forbidigo // User-facing output
	fmt.Printf("  processed: %d  auto-resolved: %d  failed: %d  (%s)\n", //nolint:forbidigo // User-facing output
		stats.Classified, stats.AutoResolved, stats.Failed, stats.Duration.Round(time.Millisecond))

	return nil
}
