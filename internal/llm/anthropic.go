package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/shaiso/Critiquely/internal/domain"
	"github.com/shaiso/Critiquely/internal/telemetry"
)

// Ошибки клиента.
var (
	// ErrEmptyResponse — модель вернула ответ без содержимого.
	ErrEmptyResponse = errors.New("empty model response")
)

// DefaultModel — модель по умолчанию.
const DefaultModel = "claude-sonnet-4-5"

// DefaultMaxTokens — лимит токенов ответа по умолчанию.
const DefaultMaxTokens = 8192

// Config — конфигурация клиента.
type Config struct {
	// APIKey — ключ API. Пустое значение — SDK берёт ANTHROPIC_API_KEY
	// из окружения.
	APIKey string

	// Model — имя модели. По умолчанию DefaultModel.
	Model string

	// MaxTokens — лимит токенов ответа. По умолчанию DefaultMaxTokens.
	MaxTokens int64
}

// Client — адаптер Anthropic Messages API к диалоговой модели домена.
//
// Принимает историю диалога и набор описаний инструментов, возвращает
// один ход модели: либо текст, либо запрос на вызов инструмента.
type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// New создаёт клиент модели.
func New(cfg Config) *Client {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &Client{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Complete отправляет диалог модели и возвращает её следующий ход.
//
// Если tools непуст, модель может запросить вызов инструмента —
// запрос попадает в ToolCalls возвращённого хода, и вызывающий код
// обязан ответить ходом с результатом (ToolResultTurn) перед
// следующим Complete.
func (c *Client) Complete(ctx context.Context, turns []domain.Turn, tools []domain.ToolDef) (domain.Turn, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  toMessages(turns),
		Tools:     toToolParams(tools),
	}

	telemetry.LLMCallsTotal.Inc()

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return domain.Turn{}, fmt.Errorf("anthropic messages: %w", err)
	}

	return fromMessage(message)
}

// toMessages преобразует ходы домена в сообщения API.
func toMessages(turns []domain.Turn) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(turns))

	for _, turn := range turns {
		switch turn.Role {
		case domain.RoleUser:
			messages = append(messages, anthropic.MessageParam{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{
					anthropic.NewTextBlock(turn.Content),
				},
			})

		case domain.RoleAssistant:
			var content []anthropic.ContentBlockParamUnion
			if turn.Content != "" {
				content = append(content, anthropic.NewTextBlock(turn.Content))
			}
			for _, call := range turn.ToolCalls {
				content = append(content, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    call.ID,
						Name:  call.Name,
						Input: call.Arguments,
					},
				})
			}
			messages = append(messages, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleAssistant,
				Content: content,
			})

		case domain.RoleTool:
			// Результат инструмента передаётся как user-сообщение
			// с tool_result блоком, привязанным к вызову
			messages = append(messages, anthropic.MessageParam{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{{
					OfToolResult: &anthropic.ToolResultBlockParam{
						ToolUseID: turn.ToolCallID,
						Content: []anthropic.ToolResultBlockParamContentUnion{{
							OfText: &anthropic.TextBlockParam{
								Text: turn.Content,
							},
						}},
					},
				}},
			})
		}
	}

	return messages
}

// toToolParams преобразует описания инструментов в схемы API.
func toToolParams(tools []domain.ToolDef) []anthropic.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}

	params := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, def := range tools {
		params = append(params, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        def.Name,
				Description: anthropic.String(def.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Type:       "object",
					Properties: def.Properties,
					Required:   def.Required,
				},
			},
		})
	}
	return params
}

// fromMessage преобразует ответ API в ход домена. Несколько текстовых
// блоков склеиваются в один ответ.
func fromMessage(message *anthropic.Message) (domain.Turn, error) {
	turn := domain.Turn{Role: domain.RoleAssistant}

	var text []string
	for _, content := range message.Content {
		switch content.Type {
		case "text":
			text = append(text, content.Text)
		case "tool_use":
			turn.ToolCalls = append(turn.ToolCalls, domain.ToolCall{
				ID:        content.ID,
				Name:      content.Name,
				Arguments: json.RawMessage(content.Input),
			})
		}
	}
	turn.Content = strings.Join(text, "\n")

	if turn.Content == "" && len(turn.ToolCalls) == 0 {
		return domain.Turn{}, ErrEmptyResponse
	}

	return turn, nil
}
