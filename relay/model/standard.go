package model

import "encoding/json"

// Message is one entry of a StandardRequest's messages array or a
// StandardResponse choice's message (spec.md §4.1, §6).
type Message struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant tool"`
	Content string `json:"content"`
}

// StandardRequest is the canonical OpenAI-shaped chat-completion request the
// gateway accepts at its public boundary (spec.md §6) and passes to every
// adapter's request builder (spec.md §4.1).
type StandardRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages" validate:"required,min=1,dive"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	TopK        *int      `json:"top_k,omitempty"`
	Stop        *StopSeq  `json:"stop,omitempty"`
	Stream      bool      `json:"stream,omitempty"`

	// RawExtra holds extra fields not modelled above. JSON decoding does not
	// fill it (it is tagged "-"), so fields the caller sends beyond the ones
	// modelled here are dropped. Adapters may inspect it but THE CORE never
	// requires it.
	RawExtra map[string]json.RawMessage `json:"-"`
}

// StopSeq accepts OpenAI's `stop` field in either its string or string-array
// shape and always exposes it as a slice to adapters.
type StopSeq struct {
	Values []string
}

// UnmarshalJSON accepts both `"stop": "foo"` and `"stop": ["foo","bar"]`.
func (s *StopSeq) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		s.Values = []string{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	s.Values = many
	return nil
}

// MarshalJSON re-emits the canonical array shape regardless of how the
// caller supplied it, since every downstream adapter wants an array
// (spec.md §4.1 notes this explicitly for the anthropic and gemini specs).
func (s StopSeq) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values)
}

// Choice is one entry of a StandardResponse's choices array.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// StandardResponse is the canonical OpenAI-shaped chat-completion response
// every adapter's response parser must produce (spec.md §4.1).
type StandardResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// ChunkChoice is one entry of a StreamChunk's choices array.
type ChunkChoice struct {
	Index        int            `json:"index"`
	Delta        map[string]any `json:"delta"`
	FinishReason *string        `json:"finish_reason"`
}

// StreamChunk is the canonical `chat.completion.chunk` SSE payload shape
// every adapter's stream-chunk parser rewraps upstream lines into
// (spec.md §4.1).
type StreamChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}
