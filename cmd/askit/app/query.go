package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/usecases"
)

func (s *session) topK(flag int) entities.Optional[int] {
	if flag > 0 {
		return entities.Some(flag)
	}
	if s.cfg.TopK > 0 {
		return entities.Some(s.cfg.TopK)
	}
	return entities.None[int]()
}

func newQueryCommand(s *session) *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:     "query QUESTION...",
		Short:   "Ask the knowledge base a single question",
		Example: `askit query -d 3 "What is the leave policy?"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return usecases.ErrEmptyQuestion
			}

			resp, err := s.client.Query.Query(cmd.Context(), entities.QueryRequest{
				Question:     question,
				DepartmentID: s.cfg.DepartmentID,
				TopK:         s.topK(topK),
			})
			if err != nil {
				return err
			}
			return s.printAnswer(resp)
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of sources to retrieve (server default when unset)")
	return cmd
}

func newChatCommand(s *session) *cobra.Command {
	var (
		topK     int
		maxTurns int
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start a conversation that keeps history between questions",
		Long:  "chat reads one question per line. /reset clears the history, /exit or EOF ends the session.",
		RunE: func(cmd *cobra.Command, args []string) error {
			chat := usecases.NewChatSession(s.client.Query, s.cfg.DepartmentID, usecases.ChatOptions{
				TopK:     s.topK(topK),
				MaxTurns: maxTurns,
			})

			ctx := cmd.Context()
			lines, readErr := scanLines(ctx, cmd.InOrStdin())
			for {
				fmt.Fprint(s.out, "> ")
				var (
					raw string
					ok  bool
				)
				select {
				case <-ctx.Done():
					fmt.Fprintln(s.out)
					return ctx.Err()
				case raw, ok = <-lines:
				}
				if !ok {
					fmt.Fprintln(s.out)
					return <-readErr
				}
				if err := ctx.Err(); err != nil {
					return err
				}

				line := strings.TrimSpace(raw)
				switch line {
				case "":
					continue
				case "/exit", "/quit":
					return nil
				case "/reset":
					chat.Reset()
					fmt.Fprintln(s.out, "history cleared")
					continue
				}

				resp, err := chat.Ask(ctx, line)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
					continue
				}
				if err := s.printAnswer(resp); err != nil {
					return err
				}
			}
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of sources to retrieve")
	cmd.Flags().IntVar(&maxTurns, "max-turns", usecases.DefaultMaxTurns, "exchanges kept as history")
	return cmd
}

// scanLines reads r line by line on its own goroutine so the chat loop can
// stop on cancellation while a read is blocked. The error channel receives
// the scanner's final error once lines is closed.
func scanLines(ctx context.Context, r io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}
