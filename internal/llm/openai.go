package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const providerOpenAI = "openai"

// openAIProvider реализует TextGenerationProvider через OpenAI-совместимый API.
type openAIProvider struct {
	client   *openaigo.Client
	model    string
	defaults generationDefaults
	logger   *zap.Logger
}

// jsonSchema адаптирует map к json.Marshaler, которого ждёт go-openai.
type jsonSchema map[string]any

func (s jsonSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any(s))
}

func (p *openAIProvider) Model() string { return p.model }

func (p *openAIProvider) buildRequest(req Request, stream bool) (openaigo.ChatCompletionRequest, error) {
	if strings.TrimSpace(req.SystemPrompt) == "" && strings.TrimSpace(req.UserPrompt) == "" {
		return openaigo.ChatCompletionRequest{}, fmt.Errorf("%w: empty prompt", ErrGenerationFailed)
	}
	var messages []openaigo.ChatCompletionMessage
	if req.SystemPrompt != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{Role: openaigo.ChatMessageRoleSystem, Content: req.SystemPrompt})
	}
	if req.UserPrompt != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{Role: openaigo.ChatMessageRoleUser, Content: req.UserPrompt})
	}

	out := openaigo.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: float32(p.defaults.temperature(req.Temperature)),
		MaxTokens:   p.defaults.maxTokens(req.MaxTokens),
		Stream:      stream,
	}
	if stream {
		out.StreamOptions = &openaigo.StreamOptions{IncludeUsage: true}
	}
	if req.JSONSchema != nil {
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		out.ResponseFormat = &openaigo.ChatCompletionResponseFormat{
			Type: openaigo.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openaigo.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: jsonSchema(req.JSONSchema),
				Strict: false,
			},
		}
	}
	return out, nil
}

func (p *openAIProvider) Generate(ctx context.Context, req Request) (string, Usage, error) {
	chatReq, err := p.buildRequest(req, false)
	if err != nil {
		observeRequest(providerOpenAI, p.model, req.Operation, "error", time.Now())
		return "", Usage{}, err
	}

	started := time.Now()
	p.logger.Debug("Sending request to OpenAI",
		zap.String("model", p.model),
		zap.String("operation", req.Operation),
		zap.Int("system_prompt_bytes", len(req.SystemPrompt)),
		zap.Int("user_prompt_bytes", len(req.UserPrompt)),
	)

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		observeRequest(providerOpenAI, p.model, req.Operation, "error", started)
		p.logger.Error("OpenAI request failed",
			zap.String("operation", req.Operation),
			zap.Duration("duration", time.Since(started)),
			zap.Error(err),
		)
		return "", Usage{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		observeRequest(providerOpenAI, p.model, req.Operation, "error_empty_response", started)
		return "", Usage{}, fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	text := resp.Choices[0].Message.Content
	usage := Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if usage.TotalTokens == 0 {
		usage = estimateUsage(p.model, req, text)
	}
	observeRequest(providerOpenAI, p.model, req.Operation, "success", started)
	observeUsage(providerOpenAI, p.model, usage)

	p.logger.Debug("OpenAI response received",
		zap.String("operation", req.Operation),
		zap.Duration("duration", time.Since(started)),
		zap.Int("response_len", len(text)),
		zap.Int("total_tokens", usage.TotalTokens),
	)
	return text, usage, nil
}

func (p *openAIProvider) Stream(ctx context.Context, req Request, handler ChunkHandler) (Usage, error) {
	chatReq, err := p.buildRequest(req, true)
	if err != nil {
		return Usage{}, err
	}

	started := time.Now()
	stream, err := p.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		observeRequest(providerOpenAI, p.model, req.Operation, "error_stream_init", started)
		return Usage{}, fmt.Errorf("%w: stream init: %v", ErrGenerationFailed, err)
	}
	defer stream.Close()

	var (
		full       strings.Builder
		finalUsage *openaigo.Usage
	)
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			observeRequest(providerOpenAI, p.model, req.Operation, "error_stream_read", started)
			return Usage{}, fmt.Errorf("%w: stream read: %v", ErrGenerationFailed, err)
		}
		if chunk.Usage != nil && chunk.Usage.TotalTokens > 0 {
			finalUsage = chunk.Usage
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if handler != nil {
			if err := handler(delta); err != nil {
				observeRequest(providerOpenAI, p.model, req.Operation, "error_stream_handler", started)
				return Usage{}, err
			}
		}
	}

	if full.Len() == 0 {
		observeRequest(providerOpenAI, p.model, req.Operation, "error_empty_response", started)
		return Usage{}, fmt.Errorf("%w: empty stream", ErrGenerationFailed)
	}

	var usage Usage
	if finalUsage != nil {
		usage = Usage{
			PromptTokens:     finalUsage.PromptTokens,
			CompletionTokens: finalUsage.CompletionTokens,
			TotalTokens:      finalUsage.TotalTokens,
		}
	} else {
		p.logger.Warn("Final usage block not received in stream, using estimate", zap.String("operation", req.Operation))
		usage = estimateUsage(p.model, req, full.String())
	}
	observeRequest(providerOpenAI, p.model, req.Operation, "success_stream", started)
	observeUsage(providerOpenAI, p.model, usage)
	return usage, nil
}
