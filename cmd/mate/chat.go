package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/matehq/mate/internal/tool"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Run an interactive session in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Notify must not block; the confirm prompt runs in its own
			// goroutine and feeds the decision back through the gate.
			var a *app
			notifier := tool.NotifierFunc(func(call tool.PendingCall) {
				go promptApproval(a.gate, call)
			})

			a, err = buildApp(ctx, cfg, notifier)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			sess, err := a.loop.NewSession(a.systemPrompt())
			if err != nil {
				return err
			}

			fmt.Printf("mate %s — model %s. Type a message, Ctrl-D to exit.\n", version, cfg.Provider.Model)

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				resp, err := a.loop.Run(ctx, sess, line)
				for _, res := range resp.Results {
					fmt.Println(res.Markdown())
				}
				if resp.Content != "" {
					fmt.Println(resp.Content)
				}
				if err != nil {
					if ctx.Err() != nil {
						fmt.Println()
						return nil
					}
					fmt.Fprintln(os.Stderr, "run failed:", err)
				}
			}
			fmt.Println()
			return scanner.Err()
		},
	}
}

// promptApproval shows the pending call and delivers the operator's
// decision. An aborted prompt counts as a denial.
func promptApproval(gate *tool.Gate, call tool.PendingCall) {
	params, _ := json.MarshalIndent(call.Params, "", "  ")

	var approved bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Allow %s?", call.Tool)).
			Description(string(params)).
			Affirmative("Approve").
			Negative("Deny").
			Value(&approved),
	))
	if err := form.Run(); err != nil {
		gate.Resolve(call.CallID, tool.Decision{Approved: false, Reason: "prompt aborted"})
		return
	}

	var reason string
	if !approved {
		reason = "denied at the terminal"
	}
	gate.Resolve(call.CallID, tool.Decision{Approved: approved, Reason: reason})
}
