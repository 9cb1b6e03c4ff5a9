// Package llm provides provider-agnostic access to chat completion APIs.
//
// The research pipeline uses the Client interface for question optimization,
// keyword extraction, and paper selection. OpenAI and Anthropic providers
// are implemented over their raw HTTP APIs; the factory selects one from
// configuration.
package llm

import "context"

// Message is a single turn in the conversation sent to the model.
type Message struct {
	// Role is "system", "user" or "assistant".
	Role string
	// Content is the message text.
	Content string
}

// Request describes a single completion call.
type Request struct {
	// Messages is the conversation so far, in order.
	Messages []Message

	// Temperature controls randomness. Zero means use the provider default.
	Temperature float64

	// MaxTokens caps the response length. Zero means use the provider default.
	MaxTokens int

	// JSONMode asks the provider to return a valid JSON object. Providers
	// without native support fall back to prompt instructions alone.
	JSONMode bool
}

// Usage reports token consumption for one call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the model output for one call.
type Response struct {
	// Content is the text of the first completion choice.
	Content string
	// Model is the model identifier that produced the response.
	Model string
	// Usage reports token consumption.
	Usage Usage
}

// Client is implemented by every completion provider.
type Client interface {
	// Complete sends the request and returns the model response. Transient
	// provider errors (429, 5xx, network failures) are retried internally;
	// the returned error is terminal.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Provider returns the provider name ("openai" or "anthropic").
	Provider() string

	// Model returns the model identifier being used.
	Model() string
}
