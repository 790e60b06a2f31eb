// Package commands turns console input lines into store operations.
// It owns user-facing messaging: stores return typed errors, and this
// layer decides what the user reads.
package commands

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

type CommandHandler interface {
	HandleCommand(ctx context.Context, text string) (string, error)
}

type Service struct {
	handler CommandHandler
}

func NewService(session sessionStore, ledger ledgerStore, config config) *Service {
	return &Service{
		handler: newHandler(session, ledger, config),
	}
}

func (s *Service) HandleInput(ctx context.Context, text string) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "handleCommand")
	defer span.Finish()

	start := time.Now()
	resp, err := s.handler.HandleCommand(ctx, text)
	observeCommand(time.Since(start), err != nil)

	if err != nil {
		ext.Error.Set(span, true)
	}
	return resp, err
}
