package main

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Harshitk-cp/sahai/internal/bootstrap"
	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/service"
	"github.com/spf13/cobra"
)

var (
	chatNoLLM bool
	chatTrace bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the engine on the terminal",
	Long: `Start an interactive conversation. Each line you type is one turn.

Commands:
  /facts   show what the engine knows about you
  /pending show unresolved contradictions
  /reset   start a new session
  /quit    leave`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatNoLLM, "no-llm", false, "Reply from templates only")
	chatCmd.Flags().BoolVar(&chatTrace, "trace", false, "Print intent, tools and phase transitions per turn")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	pool, err := bootstrap.Connect(ctx, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	var gen domain.TextGenerator
	if !chatNoLLM {
		gen = bootstrap.NewGenerator(ctx, logger)
	}

	engine, err := bootstrap.New(ctx, pool, gen, logger)
	if err != nil {
		return err
	}

	return chatLoop(cmd, engine.Orchestrator, cmd.InOrStdin(), cmd.OutOrStdout())
}

func chatLoop(cmd *cobra.Command, o *service.Orchestrator, in io.Reader, out io.Writer) error {
	ctx := cmd.Context()
	sessionID := ""
	scanner := bufio.NewScanner(in)

	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "/quit", "/exit":
			return nil
		case "/reset":
			if sessionID != "" {
				o.EndSession(sessionID)
			}
			sessionID = ""
			fmt.Fprint(out, "(new session)\n> ")
			continue
		case "/facts":
			printFacts(out, o, sessionID)
			fmt.Fprint(out, "> ")
			continue
		case "/pending":
			printPending(out, o, sessionID)
			fmt.Fprint(out, "> ")
			continue
		}

		resp, err := o.Turn(ctx, domain.TurnRequest{SessionID: sessionID, Text: line})
		if err != nil {
			return err
		}
		sessionID = resp.SessionID

		fmt.Fprintf(out, "सहाय: %s\n", resp.Reply)
		if chatTrace {
			fmt.Fprintf(out, "  intent=%s tools=%v\n", resp.Intent, resp.ToolsInvoked)
			for _, tr := range resp.Transitions {
				fmt.Fprintf(out, "  %s -> %s (%s)\n", tr.From, tr.To, tr.Reason)
			}
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func printFacts(out io.Writer, o *service.Orchestrator, sessionID string) {
	view, err := o.Session(sessionID, false)
	if err != nil || len(view.Facts) == 0 {
		fmt.Fprintln(out, "(no facts yet)")
		return
	}
	fields := make([]string, 0, len(view.Facts))
	for f := range view.Facts {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(out, "  %s = %v\n", f, view.Facts[domain.Field(f)])
	}
}

func printPending(out io.Writer, o *service.Orchestrator, sessionID string) {
	pending, err := o.Contradictions(sessionID)
	if err != nil || len(pending) == 0 {
		fmt.Fprintln(out, "(no pending contradictions)")
		return
	}
	for _, c := range pending {
		fmt.Fprintf(out, "  %s: %v -> %v\n", c.Field, c.OldValue, c.NewValue)
	}
}
