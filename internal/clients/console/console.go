// Package console is the interactive surface of the app: it reads
// input lines and prints command responses, one at a time.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"max.ks1230/expenses-app/internal/logger"
	"max.ks1230/expenses-app/internal/model/commands"
)

const (
	prompt         = "> "
	timeoutSeconds = 15
)

type Client struct {
	in  io.Reader
	out io.Writer
}

func New() *Client {
	return &Client{in: os.Stdin, out: os.Stdout}
}

// ListenInput runs the read-handle-print loop until the input closes or
// the context is cancelled. A line already being handled runs to
// completion; cancellation takes effect at the next prompt.
func (c *Client) ListenInput(ctx context.Context, svc *commands.Service) {
	scanner := bufio.NewScanner(c.in)

	logger.Info("Start listening for commands")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stop listening for commands")
			return
		default:
		}

		fmt.Fprint(c.out, prompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				logger.Error("reading input", zap.Error(err))
			}
			return
		}
		c.listenOnce(ctx, scanner.Text(), svc)
	}
}

func (c *Client) listenOnce(ctx context.Context, line string, svc *commands.Service) {
	if line == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*timeoutSeconds)
	defer cancel()

	resp, err := svc.HandleInput(ctx, line)
	if err != nil {
		logger.Error("error processing command", zap.Error(err))
	}
	if resp != "" {
		fmt.Fprintln(c.out, resp)
	}
}
