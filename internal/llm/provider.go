package llm

import "fmt"

// Provider constants
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// NewClient creates a client for the named provider. Returns an error if the
// provider is unknown or the API key is empty (except for mock).
func NewClient(provider, apiKey string) (*Client, error) {
	switch provider {
	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return &Client{backend: newGeminiBackend(apiKey)}, nil

	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return &Client{backend: newOpenAIBackend(apiKey)}, nil

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return &Client{backend: newAnthropicBackend(apiKey)}, nil

	case ProviderMock:
		return &Client{backend: newMockBackend()}, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (valid options: gemini, openai, anthropic, mock)", provider)
	}
}
