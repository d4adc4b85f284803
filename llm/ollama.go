package llm

import "context"

// ollamaProvider implements Provider for Ollama through its
// OpenAI-compatible endpoint, which accepts base64 image parts for
// multimodal models.
//
// Vision-capable local models known to work for page transcription:
//
//	llama3.2-vision:11b
//	minicpm-v:8b
//	qwen2.5vl:7b
type ollamaProvider struct {
	base openAICompatClient
}

// NewOllama creates a provider for Ollama.
func NewOllama(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	return &ollamaProvider{base: newOpenAICompatClient(cfg)}
}

func (p *ollamaProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return p.base.chat(ctx, req)
}

func (p *ollamaProvider) ChatWithImages(ctx context.Context, req VisionChatRequest) (*ChatResponse, error) {
	return p.base.chatWithImages(ctx, req)
}
