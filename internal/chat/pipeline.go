package chat

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sumerudigitals/onboard/internal/grounding"
	"github.com/sumerudigitals/onboard/internal/intent"
	"github.com/sumerudigitals/onboard/internal/llm"
	"github.com/sumerudigitals/onboard/internal/policy"
	"github.com/sumerudigitals/onboard/internal/prompt"
	"github.com/sumerudigitals/onboard/pkg/models"
)

// defaultToken stands in when a request carries no token. It resolves to
// no employee, so prompts fall back to the identity-free template.
const defaultToken = "demo"

// Pipeline wires the chat stages together. One instance serves all
// requests concurrently; every stage is stateless or internally locked.
type Pipeline struct {
	tracker *grounding.Tracker
	builder *prompt.Builder
	invoker *llm.Invoker
	cache   *Cache
}

// NewPipeline creates the chat pipeline.
func NewPipeline(tracker *grounding.Tracker, builder *prompt.Builder, invoker *llm.Invoker, cache *Cache) *Pipeline {
	return &Pipeline{tracker: tracker, builder: builder, invoker: invoker, cache: cache}
}

// Chat runs one message through the full pipeline. The only error paths
// are grounding failures for employee pages (unknown token, store down);
// model failures degrade to the fixed failure response instead.
func (p *Pipeline) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatReply, error) {
	message := strings.ToLower(strings.TrimSpace(req.Message))
	page := strings.ToLower(req.Page)
	token := req.Token
	if token == "" {
		token = defaultToken
	}

	topic := policy.DetectTopic(message)

	key := Key(token, page, message)
	if cached, ok := p.cache.Get(key); ok {
		log.Debug().Str("key", key).Msg("Cache hit")
		return &models.ChatReply{Response: cached, ModelUsed: "cached", PolicyTopic: topic}, nil
	}

	if !intent.InScope(message) {
		return &models.ChatReply{Response: RefusalResponse, ModelUsed: "none", PolicyTopic: policy.TopicNone}, nil
	}

	result, err := p.tracker.BuildContext(ctx, token, page)
	if err != nil {
		return nil, err
	}
	if result.Degraded {
		log.Warn().Str("page", page).Str("reason", result.Reason).Msg("Page context degraded")
	}

	in := intent.Classify(message)
	if degraded, reason := p.tracker.EnrichContext(ctx, result.Context, in); degraded {
		log.Warn().Str("reason", reason).Msg("Context enrichment degraded")
	}

	promptText := p.builder.Build(ctx, message, token, result.Context)

	gen := p.invoker.Generate(ctx, promptText)
	text := gen.Text
	if gen.State == llm.StateSucceeded {
		text = Trim(text)
	}

	if IsValid(text) {
		p.cache.Add(key, text)
	} else {
		log.Warn().Str("key", key).Str("response", text).Msg("Invalid response, not cached")
	}

	log.Info().Str("topic", topic).Str("model", gen.Model).Msg("Chat served")
	return &models.ChatReply{Response: text, ModelUsed: gen.Model, PolicyTopic: topic}, nil
}
