// Package quota provides a best-effort token estimator used only when an
// upstream's response carries no usage block at all, so the gateway still
// has something to record against a model's QuotaStat (spec.md §4.7:
// vendor-reported usage, when present, is always authoritative — this
// estimator never overrides it).
package quota

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	rmodel "github.com/Chyrain/LLMGateway/relay/model"
)

// encodingName is the BPE table used for estimation. cl100k_base is the
// encoding OpenAI's own chat models use; it is a reasonable generic
// approximation for vendors this gateway has no exact tokenizer for.
const encodingName = "cl100k_base"

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

func encoder() *tiktoken.Tiktoken {
	encOnce.Do(func() {
		got, err := tiktoken.GetEncoding(encodingName)
		if err != nil {
			return
		}
		enc = got
	})
	return enc
}

// EstimateTokens returns a rough token count for text. Returns 0 if the
// encoder failed to load (e.g. no network access to fetch its BPE ranks on
// first use) rather than panicking the dispatch path over a metrics
// best-effort.
func EstimateTokens(text string) int {
	e := encoder()
	if e == nil || text == "" {
		return 0
	}
	return len(e.Encode(text, nil, nil))
}

// EstimateUsage fills in resp.Usage from req/resp content when the upstream
// reported a zero usage block (spec.md §4.7). It is a no-op when usage is
// already populated.
func EstimateUsage(req *rmodel.StandardRequest, resp *rmodel.StandardResponse) {
	if resp == nil || resp.Usage.TotalTokens > 0 {
		return
	}

	var promptChars string
	for _, m := range req.Messages {
		promptChars += m.Content
	}
	prompt := EstimateTokens(promptChars)

	var completion int
	if len(resp.Choices) > 0 {
		completion = EstimateTokens(resp.Choices[0].Message.Content)
	}

	resp.Usage = rmodel.Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}
