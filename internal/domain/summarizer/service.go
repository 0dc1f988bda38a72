package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/yanqian/gopher-digest/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/gopher-digest/pkg/errors"
	"github.com/yanqian/gopher-digest/pkg/metrics"
	"github.com/yanqian/gopher-digest/pkg/util"
)

// Service turns extracted article text into a validated summary.
type Service interface {
	Summarize(ctx context.Context, req Request) (Result, error)
}

// ChatClient is the language model dependency.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// TokenCounter estimates prompt size when the model does not report usage.
type TokenCounter interface {
	CountTokens(text string) int
}

type service struct {
	cfg     Config
	client  ChatClient
	counter TokenCounter
	logger  *slog.Logger
}

// NewService is a wire provider for the summarizer domain.
func NewService(cfg Config, client ChatClient, counter TokenCounter, logger *slog.Logger) Service {
	return &service{cfg: cfg, client: client, counter: counter, logger: logger.With("component", "summarizer.service")}
}

// Summarize makes exactly one model call. The model sees the first MaxInputChars
// characters of req.Text unchanged.
func (s *service) Summarize(ctx context.Context, req Request) (Result, error) {
	text := req.Text
	if s.cfg.MaxInputChars > 0 && util.RuneLen(text) > s.cfg.MaxInputChars {
		s.logger.Info("article truncated", "chars", util.RuneLen(text), "limit", s.cfg.MaxInputChars)
		text = util.TruncateRunes(text, s.cfg.MaxInputChars)
	}
	if blank(text) {
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "text cannot be empty", nil)
	}

	messages := s.buildMessages(text, normalize(req.Title))
	estimated := s.estimatePromptTokens(messages)
	metrics.PromptTokens.Observe(float64(estimated))

	resp, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:        s.cfg.Model,
		Messages:     messages,
		Temperature:  s.cfg.Temperature,
		JSONResponse: true,
	})
	if err != nil {
		metrics.SummarizerCalls.WithLabelValues(apperrors.CodeModelUnavailable).Inc()
		return Result{}, apperrors.Wrap(apperrors.CodeModelUnavailable, "language model call failed", err)
	}
	if len(resp.Choices) == 0 {
		metrics.SummarizerCalls.WithLabelValues(apperrors.CodeModelUnavailable).Inc()
		return Result{}, apperrors.Wrap(apperrors.CodeModelUnavailable, "language model returned no choices", nil)
	}

	content := resp.Choices[0].Message.Content
	s.logger.Debug("model reply received", "content", content)

	summary, err := decodeSummary(content, s.cfg.MinTags, s.cfg.MaxTags)
	if err != nil {
		metrics.SummarizerCalls.WithLabelValues(apperrors.CodeSchemaViolation).Inc()
		s.logger.Warn("model reply rejected", "error", err)
		return Result{}, apperrors.Wrap(apperrors.CodeSchemaViolation, "model reply does not match the summary schema", err)
	}
	metrics.SummarizerCalls.WithLabelValues("ok").Inc()

	return Result{Summary: summary, Usage: usageOf(resp.Usage, estimated)}, nil
}

func (s *service) buildMessages(text, title string) []chatgpt.Message {
	system := strings.TrimSpace(s.cfg.SystemPrompt) + "\n\n" + formatInstructions(s.cfg.MinTags, s.cfg.MaxTags)

	var human strings.Builder
	human.WriteString("請針對以下文章內容進行摘要與標籤提取：\n\n")
	if title != "" {
		fmt.Fprintf(&human, "<article_title>\n%s\n</article_title>\n\n", title)
	}
	fmt.Fprintf(&human, "<article_content>\n%s\n</article_content>", text)

	return []chatgpt.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: human.String()},
	}
}

func formatInstructions(minTags, maxTags int) string {
	return fmt.Sprintf(`# Output
只輸出一個 JSON 物件，不要加入任何其他文字：
{"title": "文章的標題", "summary": "文章的繁體中文摘要，約500字，需包含核心技術與結論", "tags": ["%d-%d 個相關的技術標籤"]}`, minTags, maxTags)
}

// estimatePromptTokens follows the chat format overhead of three tokens per message plus three for the reply.
func (s *service) estimatePromptTokens(messages []chatgpt.Message) int {
	total := 3
	for _, m := range messages {
		total += 3 + s.counter.CountTokens(m.Role) + s.counter.CountTokens(m.Content)
	}
	return total
}

func usageOf(reported chatgpt.Usage, estimated int) metrics.TokenUsage {
	if reported.TotalTokens > 0 {
		return metrics.TokenUsage{
			PromptTokens:     reported.PromptTokens,
			CompletionTokens: reported.CompletionTokens,
			TotalTokens:      reported.TotalTokens,
		}
	}
	return metrics.TokenUsage{PromptTokens: estimated, TotalTokens: estimated, Estimated: true}
}

// blank reports whether text holds nothing but whitespace and control characters.
func blank(text string) bool {
	return strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) == ""
}

// normalize cleans the title hint. Article text is sent verbatim.
func normalize(text string) string {
	text = norm.NFC.String(strings.TrimSpace(text))
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, text)
}
