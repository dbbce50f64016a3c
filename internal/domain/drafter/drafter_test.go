package drafter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	drafter "github.com/curata/curata/internal/domain/drafter"
	model "github.com/curata/curata/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDrafter_Draft(t *testing.T) {
	Convey("Given a drafter with a fixed clock and id source", t, func() {
		now := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
		d := drafter.New(
			drafter.WithClock(func() time.Time { return now }),
			drafter.WithIDFunc(func() string { return "prop-test" }),
		)

		profile := model.UserProfile{
			Name:             "Alex Chen",
			Specializations:  []string{"digital_art"},
			Interests:        []string{"generative art", "creative coding"},
			PastAchievements: []string{"Solo exhibition at a major gallery"},
		}
		opp := model.Opportunity{
			ID:     "opp-1",
			Title:  "Digital Arts Exhibition",
			Type:   model.TypeExhibition,
			Source: "mock",
		}

		Convey("When drafting in each tone", func() {
			for _, tone := range []model.Tone{model.ToneFormal, model.ToneEngaging, model.ToneImpactDriven} {
				draft, err := d.Draft(context.Background(), profile, opp, tone)
				So(err, ShouldBeNil)

				So(draft.ProposalID, ShouldEqual, "prop-test")
				So(draft.OpportunityID, ShouldEqual, "opp-1")
				So(draft.Tone, ShouldEqual, tone)
				So(draft.GeneratedAt, ShouldEqual, now)
				So(draft.Content, ShouldContainSubstring, "Alex Chen")
				So(draft.Content, ShouldContainSubstring, "Digital Arts Exhibition")
				So(draft.WordCount, ShouldBeGreaterThan, 20)
			}
		})

		Convey("When the tone differs the content differs", func() {
			formal, _ := d.Draft(context.Background(), profile, opp, model.ToneFormal)
			engaging, _ := d.Draft(context.Background(), profile, opp, model.ToneEngaging)
			So(formal.Content, ShouldNotEqual, engaging.Content)
		})

		Convey("When the tone is unknown", func() {
			_, err := d.Draft(context.Background(), profile, opp, model.Tone("casual"))
			So(errors.Is(err, drafter.ErrUnknownTone), ShouldBeTrue)
		})

		Convey("When the profile is sparse", func() {
			bare := model.UserProfile{Specializations: []string{"sculpture"}}
			draft, err := d.Draft(context.Background(), bare, opp, model.ToneEngaging)

			Convey("Then a fallback display name is used", func() {
				So(err, ShouldBeNil)
				So(draft.Content, ShouldContainSubstring, "Creative Professional")
			})
		})

		Convey("When generating variants", func() {
			variants, err := d.Variants(context.Background(), profile, opp)
			So(err, ShouldBeNil)

			Convey("Then one draft per tone is produced in tone order", func() {
				So(len(variants), ShouldEqual, 3)
				So(variants[0].Tone, ShouldEqual, model.ToneFormal)
				So(variants[1].Tone, ShouldEqual, model.ToneEngaging)
				So(variants[2].Tone, ShouldEqual, model.ToneImpactDriven)
			})
		})
	})
}
