package streaming

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	rmodel "github.com/Chyrain/LLMGateway/relay/model"
)

var chunkFrameRe = regexp.MustCompile(`^data: \{.*\}\n\n$`)

func TestWriteChunkMatchesSSELineDiscipline(t *testing.T) {
	var buf bytes.Buffer
	chunk := &rmodel.StreamChunk{
		ID:      "chatcmpl-1",
		Object:  "chat.completion.chunk",
		Created: 1,
		Model:   "gpt-test",
		Choices: []rmodel.ChunkChoice{{Index: 0, Delta: map[string]any{"content": "hi"}}},
	}

	require.NoError(t, WriteChunk(&buf, chunk))
	require.Regexp(t, chunkFrameRe, buf.String())
}

func TestWriteDoneMatchesTerminatorExactly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDone(&buf))
	require.Equal(t, "data: [DONE]\n\n", buf.String())
}

func TestWriteOpenFailureMatchesSSELineDiscipline(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOpenFailure(&buf))
	require.Regexp(t, chunkFrameRe, buf.String())
}

type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) {
	return 0, bytes.ErrTooLarge
}

func TestWriteChunkPropagatesWriteError(t *testing.T) {
	chunk := &rmodel.StreamChunk{ID: "x"}
	err := WriteChunk(errWriter{}, chunk)
	require.Error(t, err)
}
