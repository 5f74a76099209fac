package streaming

import (
	"encoding/json"
	"io"

	"github.com/Laisky/errors/v2"

	rmodel "github.com/Chyrain/LLMGateway/relay/model"
)

// DoneFrame is the terminating SSE frame every stream ends with, whether it
// completed normally or the upstream's own `data: [DONE]` line was relayed
// (spec.md §4.1, §8 property 6).
const DoneFrame = "data: [DONE]\n\n"

// WriteChunk marshals chunk to the OpenAI SSE frame shape `data:
// <json>\n\n` and writes it to w (spec.md §4.1, §8 property 6).
func WriteChunk(w io.Writer, chunk *rmodel.StreamChunk) error {
	body, err := json.Marshal(chunk)
	if err != nil {
		return errors.Wrap(err, "marshal stream chunk")
	}
	if _, err := w.Write([]byte("data: ")); err != nil {
		return errors.Wrap(err, "write stream chunk frame")
	}
	if _, err := w.Write(body); err != nil {
		return errors.Wrap(err, "write stream chunk body")
	}
	_, err = w.Write([]byte("\n\n"))
	return errors.Wrap(err, "write stream chunk terminator")
}

// WriteDone writes the terminating `data: [DONE]\n\n` frame.
func WriteDone(w io.Writer) error {
	_, err := io.WriteString(w, DoneFrame)
	return errors.Wrap(err, "write done frame")
}

// WriteOpenFailure writes the single SSE frame the dispatch engine emits
// when a streaming attempt fails to open (spec.md §4.2 rule 6).
func WriteOpenFailure(w io.Writer) error {
	_, err := io.WriteString(w, `data: {"error":"request failed"}`+"\n\n")
	return errors.Wrap(err, "write open-failure frame")
}
