package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

const providerOllama = "ollama"

// ollamaProvider реализует TextGenerationProvider через нативный API Ollama.
type ollamaProvider struct {
	client   *api.Client
	model    string
	timeout  time.Duration
	defaults generationDefaults
	logger   *zap.Logger
}

func (p *ollamaProvider) Model() string { return p.model }

func (p *ollamaProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *ollamaProvider) buildRequest(req Request, stream bool) (*api.ChatRequest, error) {
	if strings.TrimSpace(req.SystemPrompt) == "" && strings.TrimSpace(req.UserPrompt) == "" {
		return nil, fmt.Errorf("%w: empty prompt", ErrGenerationFailed)
	}
	var messages []api.Message
	if req.SystemPrompt != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.SystemPrompt})
	}
	if req.UserPrompt != "" {
		messages = append(messages, api.Message{Role: "user", Content: req.UserPrompt})
	}

	chatReq := &api.ChatRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": p.defaults.temperature(req.Temperature),
			"num_predict": p.defaults.maxTokens(req.MaxTokens),
		},
	}
	if req.JSONSchema != nil {
		raw, err := json.Marshal(req.JSONSchema)
		if err != nil {
			return nil, fmt.Errorf("marshal response schema: %w", err)
		}
		chatReq.Format = raw
	}
	return chatReq, nil
}

func (p *ollamaProvider) Generate(ctx context.Context, req Request) (string, Usage, error) {
	chatReq, err := p.buildRequest(req, false)
	if err != nil {
		return "", Usage{}, err
	}

	reqCtx, cancel := p.withTimeout(ctx)
	defer cancel()

	started := time.Now()
	var resp api.ChatResponse
	err = p.client.Chat(reqCtx, chatReq, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		observeRequest(providerOllama, p.model, req.Operation, "error", started)
		if errors.Is(err, context.DeadlineExceeded) {
			p.logger.Error("Ollama request timed out", zap.Duration("timeout", p.timeout), zap.String("operation", req.Operation))
		}
		return "", Usage{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if resp.Message.Content == "" {
		observeRequest(providerOllama, p.model, req.Operation, "error_empty_response", started)
		return "", Usage{}, fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	usage := Usage{
		PromptTokens:     resp.PromptEvalCount,
		CompletionTokens: resp.EvalCount,
		TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
	}
	observeRequest(providerOllama, p.model, req.Operation, "success", started)
	observeUsage(providerOllama, p.model, usage)
	p.logger.Debug("Ollama response received",
		zap.String("operation", req.Operation),
		zap.Duration("duration", time.Since(started)),
		zap.Int("response_len", len(resp.Message.Content)),
	)
	return resp.Message.Content, usage, nil
}

func (p *ollamaProvider) Stream(ctx context.Context, req Request, handler ChunkHandler) (Usage, error) {
	chatReq, err := p.buildRequest(req, true)
	if err != nil {
		return Usage{}, err
	}

	reqCtx, cancel := p.withTimeout(ctx)
	defer cancel()

	started := time.Now()
	var (
		usage      Usage
		handlerErr error
		received   bool
	)
	err = p.client.Chat(reqCtx, chatReq, func(r api.ChatResponse) error {
		if r.Message.Content != "" {
			received = true
			if handler != nil {
				if err := handler(r.Message.Content); err != nil {
					handlerErr = err
					return err
				}
			}
		}
		if r.Done {
			usage = Usage{
				PromptTokens:     r.PromptEvalCount,
				CompletionTokens: r.EvalCount,
				TotalTokens:      r.PromptEvalCount + r.EvalCount,
			}
			if r.DoneReason != "" && r.DoneReason != "stop" {
				p.logger.Warn("Ollama stream finished with non-stop reason", zap.String("reason", r.DoneReason))
			}
		}
		return nil
	})
	if handlerErr != nil {
		observeRequest(providerOllama, p.model, req.Operation, "error_stream_handler", started)
		return Usage{}, handlerErr
	}
	if err != nil {
		observeRequest(providerOllama, p.model, req.Operation, "error_stream", started)
		return Usage{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if !received {
		observeRequest(providerOllama, p.model, req.Operation, "error_empty_response", started)
		return Usage{}, fmt.Errorf("%w: empty stream", ErrGenerationFailed)
	}

	observeRequest(providerOllama, p.model, req.Operation, "success_stream", started)
	observeUsage(providerOllama, p.model, usage)
	return usage, nil
}
