package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"modelhub/internal/service/chat"

	"github.com/spf13/cobra"
)

func chatCmd() *cobra.Command {
	var (
		providerName string
		model        string
		system       string
		temperature  float64
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with a model; reads prompts from stdin when no message is given",
		Long: `Chat with a model through the same orchestrator the server uses.

The provider's model list is fetched first; without --model its first model
is selected. Ctrl-C stops the reply in flight.

Examples:
  modelctl chat --provider Ollama "Why is the sky blue?"
  modelctl chat --provider OpenRouter --model openai/gpt-4o-mini`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry()
			keys := apiKeys()

			o, err := chat.NewOrchestrator(chat.Options{
				Providers:    reg,
				Store:        &chat.MemorySelectionStore{},
				History:      chat.NewMemoryHistory(),
				Transport:    chat.NewHandleTransport(reg, settings(), env),
				Settings:     settings(),
				Env:          env,
				SystemPrompt: system,
			})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if providerName == "" {
				providerName = o.Selection().Provider
			}
			sel, err := o.SwitchProvider(ctx, providerName, keys)
			if err != nil {
				return err
			}
			if model != "" {
				if sel, err = o.SelectModel(model); err != nil {
					return fmt.Errorf("%w; run 'modelctl models %s --dynamic' to see available models", err, sel.Provider)
				}
			}
			if sel.Model == "" {
				return fmt.Errorf("%s offers no models; check its credentials", sel.Provider)
			}
			dimColor.Fprintf(cmd.ErrOrStderr(), "Using %s / %s\n", sel.Provider, sel.Model)

			req := chat.SendRequest{APIKeys: keys, ConversationID: "modelctl"}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &temperature
			}

			if len(args) > 0 {
				req.Message = strings.Join(args, " ")
				return send(ctx, o, req, cmd.OutOrStdout())
			}
			return repl(ctx, o, req, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "provider to use (default: first registered)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "model to use (default: provider's first model)")
	cmd.Flags().StringVar(&system, "system", "You are a helpful assistant.", "system prompt")
	cmd.Flags().Float64VarP(&temperature, "temperature", "t", 0.7, "sampling temperature")
	return cmd
}

// send streams one reply; an interrupt stops it without ending the program
func send(ctx context.Context, o *chat.Orchestrator, req chat.SendRequest, out io.Writer) error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-interrupt:
			o.Stop()
		case <-done:
		}
	}()

	reply := &colorWriter{Writer: out, Color: replyColor}
	err := o.Send(ctx, req, func(e chat.Event) error {
		switch e.Type {
		case chat.EventChunk:
			_, err := io.WriteString(reply, e.Content)
			return err
		case chat.EventDone:
			fmt.Fprintln(out)
			if e.Usage != nil {
				dimColor.Fprintf(out, "[%d tokens]\n", e.Usage.TotalTokens)
			}
		case chat.EventStopped:
			fmt.Fprintln(out)
			warnColor.Fprintln(out, "[stopped]")
		case chat.EventNotification:
			fmt.Fprintln(out)
			errorColor.Fprintf(out, "%s: %s\n", e.Notification.Title, e.Notification.Message)
		}
		return nil
	})
	if errors.Is(err, chat.ErrTransport) {
		// already shown as a notification
		return nil
	}
	return err
}

func repl(ctx context.Context, o *chat.Orchestrator, req chat.SendRequest, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		promptColor.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		}

		req.Message = line
		if err := send(ctx, o, req, out); err != nil {
			return err
		}
	}
}
