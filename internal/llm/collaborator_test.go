package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractContentPrefersStructuredOutput(t *testing.T) {
	raw := []byte(`{"structured_output":{"score":8},"result":"ignored"}`)
	content, err := extractContent(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score":8}`, content)
}

func TestExtractContentFallsBackToResult(t *testing.T) {
	raw := []byte(`{"result":"{\"score\":5}"}`)
	content, err := extractContent(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"score":5}`, content)
}

func TestExtractContentFallsBackToContent(t *testing.T) {
	raw := []byte(`{"content":"{\"score\":3}"}`)
	content, err := extractContent(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"score":3}`, content)
}

func TestExtractContentExtractsFromMixedOutput(t *testing.T) {
	raw := []byte("warning: deprecated flag\n{\"score\": 4}\n")
	content, err := extractContent(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"score": 4}`, content)
}

func TestExtractContentErrorsWhenNoJSONFound(t *testing.T) {
	_, err := extractContent([]byte("no json here at all"))
	assert.Error(t, err)
}
