package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/micheleparry/GovIdea/app/radar/pkg/llm"
	"github.com/micheleparry/GovIdea/app/radar/pkg/logger"
)

// Engine 评分与报告生成引擎
//
// 所有公开方法都是全函数：推理服务失败时退化为默认值或模板，不返回错误。
// Engine 本身无可变状态，可被多个请求并发使用。
type Engine struct {
	reasoner llm.Reasoner
	model    string
	log      logrus.FieldLogger
}

// Option 引擎选项
type Option func(*Engine)

// WithModel 指定每次调用使用的模型，为空时由客户端决定
func WithModel(name string) Option {
	return func(e *Engine) { e.model = name }
}

// WithLogger 替换默认的全局日志
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New 创建引擎实例
func New(reasoner llm.Reasoner, opts ...Option) *Engine {
	e := &Engine{
		reasoner: reasoner,
		log:      logger.Log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// complete 发起一次推理调用并记录耗时，不做重试
func (e *Engine) complete(ctx context.Context, op, system, prompt string, maxTokens int) (string, error) {
	start := time.Now()
	text, err := e.reasoner.Complete(ctx, &llm.Request{
		System:    system,
		Prompt:    prompt,
		Model:     e.model,
		MaxTokens: maxTokens,
	})
	observeDuration(op, time.Since(start))
	return text, err
}
