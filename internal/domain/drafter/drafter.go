// Package drafter generates templated proposal text per tone.
//
// Drafting is template-only: the service backs A/B-style tone variants
// without any language-model dependency.
package drafter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/curata/curata/internal/domain/model"
)

// Option applies a configuration option to the Drafter.
type Option func(*Drafter)

// WithClock overrides the timestamp source for generated drafts.
func WithClock(now func() time.Time) Option {
	return func(d *Drafter) {
		if now != nil {
			d.now = now
		}
	}
}

// WithIDFunc overrides proposal id generation, useful in tests.
func WithIDFunc(newID func() string) Option {
	return func(d *Drafter) {
		if newID != nil {
			d.newID = newID
		}
	}
}

// Drafter turns a profile and an opportunity into proposal text.
type Drafter struct {
	now   func() time.Time
	newID func() string
}

// New creates a Drafter with configuration options.
func New(opts ...Option) *Drafter {
	d := &Drafter{
		now:   time.Now,
		newID: func() string { return "prop-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Draft generates a proposal for the opportunity in the requested tone.
func (d *Drafter) Draft(ctx context.Context, profile model.UserProfile, opp model.Opportunity, tone model.Tone) (model.ProposalDraft, error) {
	if !tone.Valid() {
		return model.ProposalDraft{}, fmt.Errorf("tone %q: %w", tone, ErrUnknownTone)
	}

	var content string
	switch tone {
	case model.ToneFormal:
		content = formalContent(profile, opp)
	case model.ToneEngaging:
		content = engagingContent(profile, opp)
	case model.ToneImpactDriven:
		content = impactContent(profile, opp)
	}

	return model.ProposalDraft{
		ProposalID:    d.newID(),
		OpportunityID: opp.ID,
		Content:       content,
		Tone:          tone,
		WordCount:     len(strings.Fields(content)),
		GeneratedAt:   d.now(),
	}, nil
}

// Variants generates one draft per supported tone, in tone order.
func (d *Drafter) Variants(ctx context.Context, profile model.UserProfile, opp model.Opportunity) ([]model.ProposalDraft, error) {
	tones := []model.Tone{model.ToneFormal, model.ToneEngaging, model.ToneImpactDriven}
	drafts := make([]model.ProposalDraft, 0, len(tones))
	for _, tone := range tones {
		draft, err := d.Draft(ctx, profile, opp, tone)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

func formalContent(profile model.UserProfile, opp model.Opportunity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PROPOSAL FOR: %s\n", opp.Title)
	fmt.Fprintf(&b, "Source: %s\n\n", opp.Source)

	b.WriteString("1. BACKGROUND & QUALIFICATIONS\n\n")
	fmt.Fprintf(&b, "%s is a practitioner specializing in %s.\n", displayName(profile), joinOr(profile.Specializations, "creative practice"))
	writeBullets(&b, profile.PastAchievements)

	b.WriteString("\n2. RELEVANCE\n\n")
	fmt.Fprintf(&b, "This proposal responds to the %s call %q.\n", opp.Type, opp.Title)
	if len(profile.Interests) > 0 {
		fmt.Fprintf(&b, "Current focus areas: %s.\n", strings.Join(profile.Interests, ", "))
	}

	b.WriteString("\n3. EXPECTED OUTCOMES\n\n")
	fmt.Fprintf(&b, "- Delivery of completed work aligned with the stated scope\n")
	fmt.Fprintf(&b, "- Demonstrated expertise in %s\n", joinOr(profile.Specializations, "creative practice"))
	fmt.Fprintf(&b, "\n%s looks forward to contributing to this initiative.\n", displayName(profile))
	return b.String()
}

func engagingContent(profile model.UserProfile, opp model.Opportunity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A proposal from %s\n\n", displayName(profile))
	fmt.Fprintf(&b, "Hi! I'm %s, and the call for %q immediately caught my attention.\n\n", displayName(profile), opp.Title)
	fmt.Fprintf(&b, "%s is what drives my work.", joinOr(firstInterest(profile), "Creative practice"))
	if len(profile.PastAchievements) > 0 {
		b.WriteString(" Along the way I've had the privilege of:\n")
		writeBullets(&b, profile.PastAchievements)
	} else {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nI'd love to bring that background to this %s and see what we can build together.\n\n", opp.Type)
	fmt.Fprintf(&b, "— %s\n", displayName(profile))
	return b.String()
}

func impactContent(profile model.UserProfile, opp model.Opportunity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PROPOSAL: %s\n", opp.Title)
	fmt.Fprintf(&b, "Submitted by: %s\n\n", displayName(profile))

	b.WriteString("THE OPPORTUNITY\n\n")
	fmt.Fprintf(&b, "This %s is a concrete chance to create lasting value for its community.\n\n", opp.Type)

	fmt.Fprintf(&b, "WHY %s\n\n", strings.ToUpper(displayName(profile)))
	if len(profile.PastAchievements) > 0 {
		fmt.Fprintf(&b, "%d documented successes in this space:\n", len(profile.PastAchievements))
		writeBullets(&b, profile.PastAchievements)
	}

	b.WriteString("\nTHE APPROACH\n\n")
	fmt.Fprintf(&b, "1. Leverage expertise in %s\n", joinOr(profile.Specializations, "creative practice"))
	fmt.Fprintf(&b, "2. Deliver measurable outcomes against the stated scope\n")
	fmt.Fprintf(&b, "3. Report impact in terms the community can verify\n")
	return b.String()
}

func displayName(profile model.UserProfile) string {
	if profile.Name != "" {
		return profile.Name
	}
	return "Creative Professional"
}

func firstInterest(profile model.UserProfile) []string {
	if len(profile.Interests) > 0 {
		return profile.Interests[:1]
	}
	return nil
}

func joinOr(terms []string, fallback string) string {
	if len(terms) == 0 {
		return fallback
	}
	return strings.Join(terms, ", ")
}

func writeBullets(b *strings.Builder, items []string) {
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}
