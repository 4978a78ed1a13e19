package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/baserah/baserah/internal/agent"
	"github.com/baserah/baserah/internal/fluency"
	"github.com/baserah/baserah/internal/models"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		printBanner()
		s := a.Engine.Stats(ctx)
		fmt.Println(meta("%d words | %d facts | style %s | detail %s",
			s.LexiconSize, s.Facts, s.Settings.WritingStyle, s.Settings.DetailLevel))
		fmt.Println(meta("Type /help for commands"))
		fmt.Println()

		return runChat(ctx, a.Engine)
	},
}

func runChat(ctx context.Context, engine *agent.Engine) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print(promptStyle.Render("أنت: "))

		var line string
		select {
		case <-ctx.Done():
			fmt.Println("\n\nShutting down...")
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Println()
				return nil
			}
			line = l
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if handleCommand(ctx, input, engine) {
				return nil
			}
			continue
		}

		start := time.Now()
		resp, err := engine.Respond(ctx, input)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			continue
		}

		fmt.Println()
		fmt.Println(replyStyle.Render("بصيرة: " + resp.Text))
		fmt.Println(meta("%s | %s | %.2f | %s",
			resp.Intent, resp.Method, resp.Confidence, time.Since(start).Round(time.Microsecond)))
		fmt.Println()
	}
}

// handleCommand runs a slash command and reports whether the session should end
func handleCommand(ctx context.Context, input string, engine *agent.Engine) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return false
	}

	switch parts[0] {
	case "/help":
		fmt.Println("\nCommands: /help /history [n] /stats /style <name> /detail <level> /clear /exit")
		fmt.Println(meta("Styles: FRIENDLY FORMAL INFORMAL | Detail: BRIEF MEDIUM DETAILED COMPREHENSIVE"))
		fmt.Println()
	case "/history":
		n := 10
		if len(parts) > 1 {
			fmt.Sscanf(parts[1], "%d", &n)
		}
		printHistory(engine.History(n))
	case "/stats":
		printStats(engine.Stats(ctx))
	case "/style":
		if len(parts) < 2 {
			fmt.Println(warnStyle.Render("\nUsage: /style <FRIENDLY|FORMAL|INFORMAL>\n"))
			return false
		}
		style, err := fluency.ParseStyle(parts[1])
		if err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			return false
		}
		settings := engine.Settings()
		settings.WritingStyle = style
		updateSettings(engine, settings)
	case "/detail":
		if len(parts) < 2 {
			fmt.Println(warnStyle.Render("\nUsage: /detail <BRIEF|MEDIUM|DETAILED|COMPREHENSIVE>\n"))
			return false
		}
		level, err := fluency.ParseDetailLevel(parts[1])
		if err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			return false
		}
		settings := engine.Settings()
		settings.DetailLevel = level
		updateSettings(engine, settings)
	case "/clear", "/new":
		engine.ClearHistory()
		fmt.Println("✓ Conversation cleared")
		fmt.Println()
	case "/exit", "/quit":
		fmt.Println("مع السلامة! 👋")
		return true
	default:
		fmt.Println(warnStyle.Render(fmt.Sprintf("Unknown command %s, try /help", parts[0])))
	}
	return false
}

func updateSettings(engine *agent.Engine, settings agent.Settings) {
	if err := engine.UpdateSettings(settings); err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return
	}
	fmt.Println(meta("✓ style %s | detail %s", settings.WritingStyle, settings.DetailLevel))
	fmt.Println()
}

func printHistory(turns []models.ConversationTurn) {
	if len(turns) == 0 {
		fmt.Println("\nNo history")
		fmt.Println()
		return
	}
	fmt.Println()
	fmt.Println(headerStyle.Render("History"))
	for i, turn := range turns {
		fmt.Printf("%d. %s → %s %s\n", i+1, truncate(turn.Input, 40), truncate(turn.Output, 60),
			meta("[%s]", turn.Intent))
	}
	fmt.Println()
}

func printStats(s *agent.Stats) {
	fmt.Println()
	fmt.Println(headerStyle.Render("Stats"))
	fmt.Printf("Lexicon:   %d words in %d categories\n", s.LexiconSize, len(s.Categories))
	fmt.Printf("Knowledge: %d facts about %d subjects\n", s.Facts, s.FactSubjects)
	fmt.Printf("Turns:     %d (%d in history)\n", s.Turns, s.HistoryLength)

	intents := make([]models.Intent, 0, len(s.IntentCounts))
	for intent := range s.IntentCounts {
		intents = append(intents, intent)
	}
	sort.Slice(intents, func(i, j int) bool { return s.IntentCounts[intents[i]] > s.IntentCounts[intents[j]] })
	for _, intent := range intents {
		fmt.Printf("  %-20s %d\n", intent, s.IntentCounts[intent])
	}

	if len(s.TopWords) > 0 {
		fmt.Println("Top words:")
		for _, w := range s.TopWords {
			fmt.Printf("  %s (%d)\n", w.Word, w.Count)
		}
	}
	if s.History != nil {
		for backend, n := range s.History.Persisted {
			fmt.Printf("Persisted: %s %d\n", backend, n)
		}
		if s.History.SinkErrors > 0 {
			fmt.Println(warnStyle.Render(fmt.Sprintf("Sink errors: %d", s.History.SinkErrors)))
		}
	}
	fmt.Println()
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
