// Command simulate is a local REPL: you play the prospect, the pipeline plays
// the outreach account. Useful for exercising phase transitions end to end
// without the extension.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"prodicity.app/engage/common/id"
	"prodicity.app/engage/common/llm"
	"prodicity.app/engage/common/logger"
	"prodicity.app/engage/core/config"
	"prodicity.app/engage/internal/analyzer"
	"prodicity.app/engage/internal/composer"
	"prodicity.app/engage/internal/conversation"
	"prodicity.app/engage/internal/knowledge"
	"prodicity.app/engage/internal/phase"
	"prodicity.app/engage/internal/pipeline"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	logger.Setup(cfg)

	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	analyzerLLM, err := llm.New(llm.Config{
		Provider:        cfg.AnalyzerLLM.Provider,
		APIKey:          cfg.AnalyzerLLM.APIKey,
		BaseURL:         cfg.AnalyzerLLM.BaseURL,
		Model:           cfg.AnalyzerLLM.Model,
		ReasoningEffort: llm.ReasoningEffort(cfg.AnalyzerLLM.ReasoningEffort),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "analyzer llm:", err)
		os.Exit(1)
	}
	composerLLM, err := llm.New(llm.Config{
		Provider: cfg.ComposerLLM.Provider,
		APIKey:   cfg.ComposerLLM.APIKey,
		BaseURL:  cfg.ComposerLLM.BaseURL,
		Model:    cfg.ComposerLLM.Model,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "composer llm:", err)
		os.Exit(1)
	}

	var retriever pipeline.Retriever
	if cfg.Knowledge.Enabled() {
		store, err := knowledge.NewStore(knowledge.Config{
			URL:        cfg.Knowledge.URL,
			APIKey:     cfg.Knowledge.APIKey,
			Collection: cfg.Knowledge.Collection,
			TopK:       cfg.Knowledge.TopK,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "knowledge store:", err)
			os.Exit(1)
		}
		retriever = knowledge.NewRetriever(store, cfg.Knowledge.TopK)
	}

	pipe := pipeline.New(
		analyzer.New(analyzerLLM, cfg.AnalyzerLLM.MaxTokens, cfg.AnalyzerLLM.Temperature),
		phase.NewGate(phase.Config{AllowHelpRequestBypass: cfg.Gate.AllowHelpRequestBypass}),
		retriever,
		composer.New(composerLLM, cfg.Composer.MaxResponseChars, cfg.ComposerLLM.MaxTokens, cfg.ComposerLLM.Temperature),
	)

	fmt.Println("\n=== Prodicity Sales Simulator ===")
	fmt.Println("Type your message as the prospect.")
	fmt.Println("Commands: /analyze, /phase, /approve, /reject, /exit")

	participants := []conversation.Participant{
		{ID: "you", Name: "You", Role: conversation.RoleYou},
		{ID: "prospect", Name: "Prospect", Role: conversation.RoleProspect},
	}

	initial := strings.NewReplacer("{name}", "there", "{school}", "your school").
		Replace("hey {name}, I'm currently researching what students at {school} are working on outside of school, like nonprofits, research, internships, or passion projects. Are you working on any great projects or ideas?")
	messages := []conversation.Message{{Sender: conversation.RoleYou, Text: initial}}
	fmt.Printf("ai> %s\n", initial)

	var current *phase.Phase
	var confirm *bool

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("prospect> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "/exit":
			fmt.Println("bye!")
			return
		case "/approve":
			confirm = boolPtr(true)
			fmt.Println("(phase change approved for the next turn)")
			continue
		case "/reject":
			confirm = boolPtr(false)
			fmt.Println("(phase change rejected for the next turn)")
			continue
		case "/analyze", "/phase":
			conv, err := conversation.New("Simulator Conversation", "", participants, messages)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			res, err := pipe.Analyze(ctx, conv, current, confirm)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("phase=%s ready_for_ask=%v status=%s\nreasoning: %s\ninstruction: %s\n",
				res.Phase, res.ReadyForAsk, res.Status, res.Reasoning, res.Instruction)
			continue
		}

		messages = append(messages, conversation.Message{Sender: conversation.RoleProspect, Text: input})

		conv, err := conversation.New("Simulator Conversation", "", participants, messages)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}

		res, err := pipe.RunTurn(ctx, conv, current, confirm)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		confirm = nil

		if res.Status == pipeline.StatusApprovalRequired {
			fmt.Printf("(approval required: analyzer suggests %s; use /approve or /reject, then send another message)\n",
				res.SuggestedPhase)
			p := res.Phase
			current = &p
			continue
		}

		p := res.Phase
		current = &p

		if res.Message == "" {
			fmt.Println("(no message generated this turn)")
			continue
		}

		messages = append(messages, conversation.Message{Sender: conversation.RoleYou, Text: res.Message})
		fmt.Printf("ai> %s  [phase=%s]\n", res.Message, res.Phase)
	}
}

func boolPtr(b bool) *bool { return &b }
