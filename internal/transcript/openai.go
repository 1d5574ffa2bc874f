package transcript

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient drives the wizard through the chat completions API. It has no
// PDF vision path, so it intentionally does not implement PDFTranscriber.
type OpenAIClient struct {
	Model string
	opts  []option.RequestOption
}

func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key missing")
	}
	if model == "" {
		return nil, errors.New("openai model is required")
	}
	return &OpenAIClient{
		Model: model,
		opts:  []option.RequestOption{option.WithAPIKey(apiKey)},
	}, nil
}

func (o *OpenAIClient) params(system string, msgs []Message, opts Options) openai.ChatCompletionNewParams {
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	if system != "" {
		converted = append(converted, openai.SystemMessage(system))
	}
	for _, m := range msgs {
		switch m.Role {
		case RoleAssistant:
			converted = append(converted, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		default:
			converted = append(converted, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.Model),
		Messages: converted,
	}
	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	return params
}

func (o *OpenAIClient) Complete(ctx context.Context, system string, msgs []Message, opts Options) (string, error) {
	client := openai.NewClient(o.opts...)
	resp, err := client.Chat.Completions.New(ctx, o.params(system, msgs, opts))
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIClient) Stream(ctx context.Context, system string, msgs []Message, opts Options, onDelta func(string)) (string, error) {
	client := openai.NewClient(o.opts...)
	stream := client.Chat.Completions.NewStreaming(ctx, o.params(system, msgs, opts))

	acc := openai.ChatCompletionAccumulator{}
	var full string
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full += delta
		if onDelta != nil {
			onDelta(delta)
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("openai stream failed: %w", err)
	}
	return full, nil
}
