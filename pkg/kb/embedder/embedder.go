// Package embedder turns KB chunks into vectors through any OpenAI-compatible
// embeddings endpoint (Ollama, vLLM, OpenAI).
package embedder

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Client struct {
	c     *openai.Client
	model string
}

// New returns nil when endpoint is empty; callers treat a nil Embedder as
// "keyword search only".
func New(endpoint, key, model string) *Client {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil
	}
	if key == "" {
		key = "ollama"
	}
	cfg := openai.DefaultConfig(key)
	if !strings.HasSuffix(endpoint, "/v1") {
		endpoint += "/v1"
	}
	cfg.BaseURL = endpoint
	return &Client{c: openai.NewClientWithConfig(cfg), model: model}
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.c.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings: %w", err)
	}
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index >= 0 && d.Index < len(out) {
			out[d.Index] = d.Embedding
		}
	}
	return out, nil
}

func FloatsToBytes(v []float32) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}

func BytesToFloats(b []byte) []float32 {
	n := len(b) / 4
	out := make([]float32, n)
	_ = binary.Read(bytes.NewReader(b[:n*4]), binary.LittleEndian, &out)
	return out
}
