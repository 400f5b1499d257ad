// Package session orchestrates one conversation exchange: extract intent,
// merge it into the accumulated intent, query the catalog, plan the next
// move, and emit the response.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"smartshopper/internal/assistant/intent"
	"smartshopper/internal/assistant/planner"
	"smartshopper/internal/catalog"
	commonerrors "smartshopper/internal/common/errors"
	"smartshopper/internal/common/logger"
	"smartshopper/internal/common/metrics"
	"smartshopper/internal/common/observability"
	"smartshopper/internal/interaction"
	"smartshopper/internal/models"
)

const recordTimeout = 5 * time.Second

// Config holds the response texts and the adapter name used for metric
// labels.
type Config struct {
	Greeting       string
	ResultsMessage string
	NoMatchMessage string
	AdapterName    string
}

func (c *Config) applyDefaults() {
	if c.Greeting == "" {
		c.Greeting = "Hi! What are you looking for today?"
	}
	if c.ResultsMessage == "" {
		c.ResultsMessage = "Great! Here are some options for you."
	}
	if c.NoMatchMessage == "" {
		c.NoMatchMessage = "Sorry, I couldn't find any matching products. Try refining your search."
	}
	if c.AdapterName == "" {
		c.AdapterName = "catalog"
	}
}

// TurnResult is what one user turn produces for the widget.
type TurnResult struct {
	Reply    string           `json:"reply"`
	Products []models.Product `json:"products,omitempty"`
	Intent   intent.Intent    `json:"intent"`
	FollowUp string           `json:"followUp,omitempty"`
}

// Engine processes turns for any number of independent sessions. It holds no
// per-conversation state: the session is taken and returned explicitly, so
// callers may run separate sessions fully in parallel.
type Engine struct {
	config    *Config
	extractor *intent.Extractor
	planner   *planner.Planner
	catalog   catalog.Querier
	recorder  interaction.Recorder // optional, fire-and-forget
	obs       *observability.Observability
	logger    logger.Logger
}

func NewEngine(
	config *Config,
	extractor *intent.Extractor,
	pl *planner.Planner,
	cat catalog.Querier,
	rec interaction.Recorder,
	obs *observability.Observability,
	log logger.Logger,
) *Engine {
	if config == nil {
		config = &Config{}
	}
	config.applyDefaults()
	return &Engine{
		config:    config,
		extractor: extractor,
		planner:   pl,
		catalog:   cat,
		recorder:  rec,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "session.engine"}),
	}
}

// NewSession starts a fresh conversation carrying the greeting as the first
// agent utterance.
func (e *Engine) NewSession() models.ChatSession {
	now := time.Now().UTC()
	sess := models.ChatSession{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		LastActivity: now,
	}
	sess = sess.WithUtterance(models.RoleAgent, e.config.Greeting, now)
	metrics.SessionsStarted.Inc()
	return sess
}

// Greeting returns the configured opening message.
func (e *Engine) Greeting() string {
	return e.config.Greeting
}

// HandleTurn processes one user utterance against the given session and
// returns the updated session plus the response. The input session is never
// mutated, and the accumulated intent only advances after the catalog query
// returned (successfully or explicitly empty): a cancelled or timed-out query
// aborts the turn with the session unchanged, so the caller can safely redo
// it. Any other query failure degrades to a zero-product result; a turn
// always produces a response.
func (e *Engine) HandleTurn(ctx context.Context, sess models.ChatSession, utterance string) (models.ChatSession, *TurnResult, error) {
	start := time.Now()

	extracted := e.extractor.Extract(utterance)
	merged := intent.Merge(sess.Intent, extracted)

	res, err := e.catalog.Query(ctx, merged)
	if err != nil {
		if ctx.Err() != nil {
			return sess, nil, err
		}
		metrics.CatalogQueriesFailed.WithLabelValues(e.config.AdapterName).Inc()
		e.logger.WithError(err).Warn("catalog query failed, treating as empty result", map[string]interface{}{
			"sessionId": sess.ID,
		})
		res = &catalog.Result{}
	}

	decision := e.planner.Plan(merged, res.AvailableAttributes, res.Products)
	reply := e.renderReply(decision)

	now := time.Now().UTC()
	next := sess
	next.Intent = merged
	next = next.WithUtterance(models.RoleUser, utterance, now)
	next = next.WithUtterance(models.RoleAgent, reply, now)

	e.record(sess.ID, utterance, reply, merged, decision.Question)

	metrics.TurnsProcessed.WithLabelValues(string(decision.Kind)).Inc()
	metrics.TurnDuration.WithLabelValues(string(decision.Kind)).Observe(time.Since(start).Seconds())
	if e.obs != nil {
		e.obs.RecordTurnProcessed(ctx, string(decision.Kind))
		e.obs.RecordTurnDuration(ctx, time.Since(start), string(decision.Kind))
	}

	return next, &TurnResult{
		Reply:    reply,
		Products: decision.Products,
		Intent:   merged,
		FollowUp: decision.Question,
	}, nil
}

func (e *Engine) renderReply(decision planner.Decision) string {
	switch decision.Kind {
	case planner.KindAskQuestion:
		return decision.Question
	case planner.KindPresentResults:
		return e.config.ResultsMessage
	default:
		if decision.Question != "" {
			return e.config.NoMatchMessage + " " + decision.Question
		}
		return e.config.NoMatchMessage
	}
}

// record hands the exchange to the interaction collaborator without blocking
// the turn. Failures increment a counter and are logged, nothing more.
func (e *Engine) record(sessionID, question, reply string, it intent.Intent, followUp string) {
	if e.recorder == nil {
		return
	}

	in := &models.Interaction{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Question:  question,
		Response:  reply,
		Intent:    it,
		FollowUp:  followUp,
		CreatedAt: time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := e.recorder.Record(ctx, in); err != nil {
			metrics.InteractionLogFailures.Inc()
			e.logger.WithError(commonerrors.NewInteractionLogFailedError(err)).Warn("failed to record interaction", map[string]interface{}{
				"sessionId": sessionID,
			})
		}
	}()
}
