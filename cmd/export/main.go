package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"greentrip-be/internal/config"
	"greentrip-be/internal/pkg/logger"
	"greentrip-be/internal/repository/contract"
	"greentrip-be/internal/repository/implementation"
	"greentrip-be/internal/repository/memory"
	"greentrip-be/internal/service"
	"greentrip-be/pkg/database"

	"github.com/fatih/color"
)

// Offline clarification export: dumps completed Q&A pairs to a JSON file for
// the research pipeline, plus a statistics summary to stdout.
func main() {
	var (
		outPath = flag.String("out", "", "output file (default clarification_export_<date>.json)")
		limit   = flag.Int("limit", 0, "max conversations to scan (0 = all)")
	)
	flag.Parse()

	cfg := config.Load()

	var conversationRepo contract.ConversationRepository
	if cfg.Database.Backend == "memory" {
		color.Yellow("Store backend is MEMORY; nothing persisted to export")
		conversationRepo = memory.NewConversationRepository()
	} else {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			color.Red("Failed to connect to database: %v", err)
			os.Exit(1)
		}
		conversationRepo = implementation.NewConversationRepository(db)
	}

	exportLogger := logger.NewIsolatedLogger("logs/export.log")
	exportService := service.NewExportService(conversationRepo, exportLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	color.Cyan("🚀 Exporting clarification data")

	export, err := exportService.ExportClarifications(ctx, *limit)
	if err != nil {
		color.Red("Export failed: %v", err)
		os.Exit(1)
	}

	path := *outPath
	if path == "" {
		path = fmt.Sprintf("clarification_export_%s.json", time.Now().Format("20060102_150405"))
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		color.Red("Failed to marshal export: %v", err)
		os.Exit(1)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		color.Red("Failed to write %s: %v", path, err)
		os.Exit(1)
	}

	color.Green("Exported %d sessions (%d Q&A pairs) to %s",
		export.TotalSessions, export.TotalQAPairs, path)

	stats, err := exportService.Statistics(ctx)
	if err != nil {
		color.Red("Statistics failed: %v", err)
		os.Exit(1)
	}

	color.Yellow("\nClarification statistics")
	fmt.Printf("  conversations:        %d\n", stats.TotalConversations)
	fmt.Printf("  with clarification:   %d\n", stats.WithClarification)
	fmt.Printf("  without:              %d\n", stats.WithoutClarification)
	fmt.Printf("  questions asked:      %d\n", stats.TotalQuestionsAsked)
	fmt.Printf("  answers collected:    %d\n", stats.TotalAnswers)
	fmt.Printf("  completion rate:      %.2f\n", stats.CompletionRate)
	fmt.Printf("  with feedback:        %d\n", stats.WithFeedback)
	if len(stats.CategoryBreakdown) > 0 {
		fmt.Println("  categories:")
		for category, count := range stats.CategoryBreakdown {
			fmt.Printf("    %-20s %d\n", category, count)
		}
	}
}
