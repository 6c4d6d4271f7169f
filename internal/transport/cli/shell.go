package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/sandevgo/ember/internal/config"
	"github.com/sandevgo/ember/internal/service/mind"
	"github.com/sandevgo/ember/internal/service/ui"
	"github.com/sandevgo/ember/pkg/log"
)

// Shell is the human side of the cognition loop: plain lines go into the
// inbox and surface in a future cycle's prompt, slash commands inspect
// the running mind.
type Shell struct {
	cfg    *config.AppConfig
	driver *mind.Driver
	inbox  *mind.Inbox
	stop   func()
	rl     *readline.Instance
}

func NewShell(cfg *config.AppConfig, driver *mind.Driver, inbox *mind.Inbox, stop func()) (*Shell, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "human> ",
		HistoryFile:     cfg.GetInputHistoryPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "/quit",
	})
	if err != nil {
		return nil, err
	}

	return &Shell{
		cfg:    cfg,
		driver: driver,
		inbox:  inbox,
		stop:   stop,
		rl:     rl,
	}, nil
}

func (s *Shell) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("shell started; plain text speaks to the mind, /status /stats /context /quit")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					s.stop()
					return nil
				}
				continue
			} else if err == io.EOF {
				s.stop()
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch line {
		case "/quit":
			s.stop()
			return nil
		case "/status":
			s.printStatus()
		case "/stats":
			s.printStats()
		case "/context":
			fmt.Fprintln(s.rl.Stdout(), ui.MetaStyle.Render("..."+s.driver.ContextTail()))
		default:
			s.inbox.Push(line)
			fmt.Fprintln(s.rl.Stdout(), ui.MetaStyle.Render("(queued, the mind folds it into its next cycle)"))
		}
	}
}

func (s *Shell) Shutdown(ctx context.Context) error {
	if s.rl != nil {
		return s.rl.Close()
	}
	return nil
}

func (s *Shell) printStatus() {
	st := s.driver.Status()
	fmt.Fprintln(s.rl.Stdout(), ui.MetaStyle.Render(fmt.Sprintf(
		"uptime:%s | thoughts:%d | compressions:%d | ctx:%d | pending:%d",
		uptime(st), st.Thoughts, st.Compressions, st.ContextSize, st.Pending)))
}

func (s *Shell) printStats() {
	st := s.driver.Status()
	out := s.rl.Stdout()
	fmt.Fprintln(out, ui.TitleStyle.Render("Ember Stats"))
	fmt.Fprintf(out, "  model:            %s\n", st.Model)
	fmt.Fprintf(out, "  session:          %s\n", st.SessionID)
	fmt.Fprintf(out, "  uptime:           %s\n", uptime(st))
	fmt.Fprintf(out, "  thoughts:         %d\n", st.Thoughts)
	fmt.Fprintf(out, "  compressions:     %d\n", st.Compressions)
	fmt.Fprintf(out, "  context size:     %d (%d records)\n", st.ContextSize, st.ContextRecords)
	fmt.Fprintf(out, "  total tokens:     %d\n", st.TotalTokens)
	fmt.Fprintf(out, "  avg thought time: %.1fs\n", st.AvgThoughtSec)
	fmt.Fprintf(out, "  pending input:    %d\n", st.Pending)
}

func uptime(st mind.Status) time.Duration {
	if st.StartedAt.IsZero() {
		return 0
	}
	return time.Since(st.StartedAt).Truncate(time.Second)
}
