package model_test

import (
	"testing"
	"time"

	model "github.com/curata/curata/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestOpportunityType(t *testing.T) {
	convey.Convey("Given the opportunity type enum", t, func() {
		convey.Convey("When parsing supported values", func() {
			for _, s := range []string{"exhibition", "grant", "residency", "call"} {
				parsed, err := model.ParseOpportunityType(s)
				convey.So(err, convey.ShouldBeNil)
				convey.So(parsed.Valid(), convey.ShouldBeTrue)
			}
		})

		convey.Convey("When parsing with different casing and whitespace", func() {
			parsed, err := model.ParseOpportunityType("  Grant ")
			convey.So(err, convey.ShouldBeNil)
			convey.So(parsed, convey.ShouldEqual, model.TypeGrant)
		})

		convey.Convey("When parsing an unknown value", func() {
			_, err := model.ParseOpportunityType("fellowship")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestTone(t *testing.T) {
	convey.Convey("Given the tone enum", t, func() {
		convey.Convey("When parsing supported values", func() {
			for _, s := range []string{"formal", "engaging", "impact-driven"} {
				parsed, err := model.ParseTone(s)
				convey.So(err, convey.ShouldBeNil)
				convey.So(parsed.Valid(), convey.ShouldBeTrue)
			}
		})

		convey.Convey("When parsing an unknown tone", func() {
			_, err := model.ParseTone("casual")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestOutcomeStatus(t *testing.T) {
	convey.Convey("Given the outcome status enum", t, func() {
		convey.Convey("Then pending is valid but not decided", func() {
			convey.So(model.StatusPending.Valid(), convey.ShouldBeTrue)
			convey.So(model.StatusPending.Decided(), convey.ShouldBeFalse)
		})

		convey.Convey("Then accepted and rejected are decided", func() {
			convey.So(model.StatusAccepted.Decided(), convey.ShouldBeTrue)
			convey.So(model.StatusRejected.Decided(), convey.ShouldBeTrue)
		})

		convey.Convey("Then arbitrary strings are invalid", func() {
			convey.So(model.OutcomeStatus("withdrawn").Valid(), convey.ShouldBeFalse)
		})
	})
}

func TestUserProfile(t *testing.T) {
	convey.Convey("Given a user profile", t, func() {
		convey.Convey("When it has specializations only", func() {
			p := model.UserProfile{Name: "Alex", Specializations: []string{"digital_art"}}
			convey.So(p.HasSignal(), convey.ShouldBeTrue)
		})

		convey.Convey("When it has interests only", func() {
			p := model.UserProfile{Name: "Alex", Interests: []string{"generative art"}}
			convey.So(p.HasSignal(), convey.ShouldBeTrue)
		})

		convey.Convey("When both sets are empty", func() {
			p := model.UserProfile{Name: "Alex", PastAchievements: []string{"Solo exhibition"}}
			convey.So(p.HasSignal(), convey.ShouldBeFalse)
		})
	})
}

func TestOpportunityExpiry(t *testing.T) {
	convey.Convey("Given an opportunity with a deadline", t, func() {
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		opp := model.Opportunity{ID: "opp-1", Deadline: now.Add(24 * time.Hour)}

		convey.Convey("Then it is not expired before the deadline", func() {
			convey.So(opp.Expired(now), convey.ShouldBeFalse)
		})

		convey.Convey("Then it is expired strictly after the deadline", func() {
			convey.So(opp.Expired(now.Add(48*time.Hour)), convey.ShouldBeTrue)
		})

		convey.Convey("Then the deadline instant itself is not expired", func() {
			convey.So(opp.Expired(opp.Deadline), convey.ShouldBeFalse)
		})
	})
}
