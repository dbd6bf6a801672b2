package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

var encoders sync.Map // model -> *tiktoken.Tiktoken

// CountTokens оценивает число токенов в тексте для модели.
// Для неизвестных моделей используется cl100k_base; при ошибке загрузки словаря
// возвращается грубая оценка len/4.
func CountTokens(model, text string) int {
	if text == "" {
		return 0
	}
	enc := encoderFor(model)
	if enc == nil {
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

func encoderFor(model string) *tiktoken.Tiktoken {
	if cached, ok := encoders.Load(model); ok {
		return cached.(*tiktoken.Tiktoken)
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil
		}
	}
	encoders.Store(model, enc)
	return enc
}

func estimateUsage(model string, req Request, completion string) Usage {
	prompt := CountTokens(model, req.SystemPrompt) + CountTokens(model, req.UserPrompt)
	out := CountTokens(model, completion)
	return Usage{
		PromptTokens:     prompt,
		CompletionTokens: out,
		TotalTokens:      prompt + out,
		Estimated:        true,
	}
}
