package llm

// Request shape sent upstream (OpenAI-style).
type providerChatRequest struct {
	Model          string                  `json:"model"`
	Messages       []ChatMessage           `json:"messages"`
	Temperature    float32                 `json:"temperature,omitempty"`
	TopP           float32                 `json:"top_p,omitempty"`
	MaxTokens      int                     `json:"max_tokens,omitempty"`
	Stop           []string                `json:"stop,omitempty"`
	ResponseFormat *providerResponseFormat `json:"response_format,omitempty"`
}

type providerResponseFormat struct {
	Type string `json:"type"`
}

type providerChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

type providerUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type providerChatResponse struct {
	ID      string               `json:"id"`
	Object  string               `json:"object"`
	Created int64                `json:"created"`
	Model   string               `json:"model"`
	Choices []providerChatChoice `json:"choices"`
	Usage   *providerUsage       `json:"usage,omitempty"`
}

type providerErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}
