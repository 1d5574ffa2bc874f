package gcp

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"

	"github.com/a01041072831-pixel/Jisan-Platform/internal/transcript"
)

// PDFExtractionPrompt asks the model for a verbatim transcription of a
// scanned Korean claim document. It is deliberately literal: the wizard
// reasons over the raw text itself, so summaries would destroy evidence.
const PDFExtractionPrompt = `이 PDF 문서의 모든 텍스트를 원문 그대로 추출해 주세요. 요약하거나 해석하지 말고, 문서에 보이는 텍스트를 빠짐없이 옮겨 적으세요. 표는 행과 열의 내용을 순서대로 나열하고, 도장이나 서명란은 [도장], [서명]으로 표기하세요.`

// Phrases indicating the model declined instead of answering. A refusal in
// the middle of a drafting session must surface as an error, not as report
// content.
var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"as a large language model",
	"죄송하지만 답변할 수",
	"요청을 수행할 수 없습니다",
}

// VertexClient drives the wizard conversation and PDF transcription through
// Vertex AI Gemini.
type VertexClient struct {
	base        *genai.Client
	modelName   string
	maxTokens   int32
	temperature float32
}

// NewVertexClient connects to Vertex AI in the given project and region.
func NewVertexClient(ctx context.Context, projectID, region, modelName string, maxTokens int, temperature float64) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	base, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &VertexClient{
		base:        base,
		modelName:   modelName,
		maxTokens:   int32(maxTokens),
		temperature: float32(temperature),
	}, nil
}

func (c *VertexClient) Close() error {
	if c.base != nil {
		return c.base.Close()
	}
	return nil
}

// model builds a per-call generative model carrying the system instruction
// and generation limits. Model values are client-side configuration, so
// constructing one per call costs nothing.
func (c *VertexClient) model(system string, opts transcript.Options) *genai.GenerativeModel {
	m := c.base.GenerativeModel(c.modelName)
	if system != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}
	maxTokens := c.maxTokens
	if opts.MaxTokens > 0 {
		maxTokens = int32(opts.MaxTokens)
	}
	temperature := c.temperature
	if opts.Temperature > 0 {
		temperature = float32(opts.Temperature)
	}
	m.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: genai.Ptr(maxTokens),
		Temperature:     genai.Ptr(temperature),
	}
	m.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}
	return m
}

// chat splits a conversation into prior history and the final user message,
// the shape the chat session API expects.
func chat(m *genai.GenerativeModel, msgs []transcript.Message) (*genai.ChatSession, genai.Text, error) {
	if len(msgs) == 0 {
		return nil, "", fmt.Errorf("conversation has no messages")
	}
	last := msgs[len(msgs)-1]
	if last.Role != transcript.RoleUser {
		return nil, "", fmt.Errorf("conversation must end with a user message, got role %q", last.Role)
	}

	cs := m.StartChat()
	for _, msg := range msgs[:len(msgs)-1] {
		role := "user"
		if msg.Role == transcript.RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return cs, genai.Text(last.Content), nil
}

// Complete returns the model's full response to the conversation.
func (c *VertexClient) Complete(ctx context.Context, system string, msgs []transcript.Message, opts transcript.Options) (string, error) {
	cs, last, err := chat(c.model(system, opts), msgs)
	if err != nil {
		return "", err
	}
	resp, err := cs.SendMessage(ctx, last)
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	text := extractText(resp)
	if err := checkRefusal(text); err != nil {
		return "", err
	}
	return text, nil
}

// Stream relays response deltas through onDelta as they arrive and returns
// the accumulated text.
func (c *VertexClient) Stream(ctx context.Context, system string, msgs []transcript.Message, opts transcript.Options, onDelta func(string)) (string, error) {
	cs, last, err := chat(c.model(system, opts), msgs)
	if err != nil {
		return "", err
	}

	iter := cs.SendMessageStream(ctx, last)
	var full strings.Builder
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", fmt.Errorf("gemini stream failed: %w", err)
		}
		delta := rawText(resp)
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}

	text := full.String()
	if err := checkRefusal(text); err != nil {
		return "", err
	}
	return text, nil
}

// ExtractPDFText transcribes a PDF's visible text by sending the raw bytes
// alongside the transcription prompt.
func (c *VertexClient) ExtractPDFText(ctx context.Context, data []byte) (string, error) {
	m := c.model("", transcript.Options{})
	filePart := genai.Blob{
		MIMEType: "application/pdf",
		Data:     data,
	}
	resp, err := m.GenerateContent(ctx, filePart, genai.Text(PDFExtractionPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini returned no text for PDF transcription")
	}
	if err := checkRefusal(text); err != nil {
		return "", err
	}
	return text, nil
}

// rawText concatenates every text part of the first candidate.
func rawText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}

// extractText additionally trims markdown fences the model sometimes wraps
// around a complete response. Never applied to individual stream deltas.
func extractText(resp *genai.GenerateContentResponse) string {
	s := strings.TrimSpace(rawText(resp))
	s = strings.TrimPrefix(s, "```markdown")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func checkRefusal(text string) error {
	lower := strings.ToLower(text)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return fmt.Errorf("gemini response indicates refusal: %q", firstLine(text))
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
