// Package reply implements the reply policy: the pure decision function that
// maps an inbound text to an outbound reply. Deterministic keyword rules are
// evaluated first, then an optional AI completion with a canned fallback, and
// finally a generic acknowledgment. Decide never returns an error.
package reply

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Canned reply texts. Operators can override them through Policy fields.
const (
	DefaultOrderReply   = "Thanks for your interest! Reply with the item name and your address to place an order."
	DefaultHoursReply   = "We are open Mon-Fri 9am-6pm. Weekend by appointment."
	DefaultApologyReply = "Thanks, we will be with you shortly!"
	DefaultGenericReply = "Thanks for your message! How can we help?"
	DefaultPersona      = "You are a helpful sales assistant."
	defaultAITimeout    = 20 * time.Second
	promptTemplate      = "You are a helpful sales assistant for a Caribbean small business. A customer said: %q. Craft a short (max 40 words) friendly reply with a CTA to order."
)

// Completer is the AI-completion capability. A nil Completer means the
// capability is not configured and the generic acknowledgment applies.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Policy decides the outbound reply for an inbound text. The zero value is
// not usable; construct with New.
type Policy struct {
	// OrderKeywords and HoursKeywords are matched case-insensitively as
	// substrings, in that priority order.
	OrderKeywords []string
	HoursKeywords []string

	OrderReply   string
	HoursReply   string
	ApologyReply string
	GenericReply string
	Persona      string

	// Completer is the optional AI branch. AITimeout bounds each call.
	Completer Completer
	AITimeout time.Duration

	log zerolog.Logger
}

// New returns a Policy with the default keyword sets and reply texts.
// completer may be nil when no AI capability is configured.
func New(completer Completer, log zerolog.Logger) *Policy {
	return &Policy{
		OrderKeywords: []string{"order"},
		HoursKeywords: []string{"hours", "open"},
		OrderReply:    DefaultOrderReply,
		HoursReply:    DefaultHoursReply,
		ApologyReply:  DefaultApologyReply,
		GenericReply:  DefaultGenericReply,
		Persona:       DefaultPersona,
		Completer:     completer,
		AITimeout:     defaultAITimeout,
		log:           log,
	}
}

// Decide maps inbound text to a reply. Evaluation order: ordering keywords,
// hours keywords, AI completion (failures fully absorbed), generic
// acknowledgment. It has no side effects beyond logging.
func (p *Policy) Decide(ctx context.Context, text string) string {
	lower := strings.ToLower(text)

	if containsAny(lower, p.OrderKeywords) {
		return p.OrderReply
	}
	if containsAny(lower, p.HoursKeywords) {
		return p.HoursReply
	}

	if p.Completer == nil {
		return p.GenericReply
	}

	timeout := p.AITimeout
	if timeout <= 0 {
		timeout = defaultAITimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := p.Completer.Complete(cctx, p.Persona, fmt.Sprintf(promptTemplate, text))
	if err != nil || strings.TrimSpace(out) == "" {
		p.log.Warn().Err(err).Msg("completion failed, using fallback reply")
		return p.ApologyReply
	}
	return strings.TrimSpace(out)
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
