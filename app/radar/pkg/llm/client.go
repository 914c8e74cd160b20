package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/micheleparry/GovIdea/app/radar/pkg/config"
)

// ErrEmptyResponse 推理服务没有返回任何消息
var ErrEmptyResponse = errors.New("llm: empty response")

// Request 一次推理调用
type Request struct {
	System    string
	Prompt    string
	Model     string // 为空时使用客户端默认模型
	MaxTokens int
}

// Reasoner 外部推理服务边界
type Reasoner interface {
	Complete(ctx context.Context, req *Request) (string, error)
}

// Client 基于 eino ChatModel 的推理客户端
type Client struct {
	chatModel model.BaseChatModel
	model     string
}

var _ Reasoner = (*Client)(nil)

// NewClient 使用已构造的 ChatModel 创建客户端
func NewClient(cm model.BaseChatModel, modelName string) *Client {
	if modelName == "" {
		modelName = config.DefaultModel
	}
	return &Client{chatModel: cm, model: modelName}
}

// NewOpenAIClient 通过 OpenAI 兼容协议连接推理服务
func NewOpenAIClient(ctx context.Context, cfg config.LLMConfig) (*Client, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = config.DefaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: baseURL,
		APIKey:  cfg.APIKey,
		Model:   modelName,
		Timeout: cfg.TimeoutDuration(),
	})
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}
	return NewClient(chatModel, modelName), nil
}

// Model 返回默认模型标识
func (c *Client) Model() string {
	return c.model
}

// Complete 发送 system + user 两条消息并返回文本回复
func (c *Client) Complete(ctx context.Context, req *Request) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(req.System),
		schema.UserMessage(req.Prompt),
	}

	modelName := req.Model
	if modelName == "" {
		modelName = c.model
	}
	opts := []model.Option{model.WithModel(modelName)}
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}

	resp, err := c.chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}
	return resp.Content, nil
}
