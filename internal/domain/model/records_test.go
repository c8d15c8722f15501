package model_test

import (
	"errors"
	"testing"

	model "github.com/fieldline/standee/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParticipantRecord(t *testing.T) {
	convey.Convey("Given a ParticipantRecord", t, func() {
		convey.Convey("When the record is fully populated", func() {
			p := model.ParticipantRecord{
				UserID:      "u-123",
				FirstName:   "Dana",
				LastName:    "Whitfield",
				DisplayName: "dwhit",
			}

			convey.Convey("Then it should validate", func() {
				convey.So(p.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When only the user id is set", func() {
			p := model.ParticipantRecord{UserID: "u-456"}

			convey.Convey("Then it should still validate", func() {
				convey.So(p.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the user id is empty", func() {
			p := model.ParticipantRecord{DisplayName: "ghost"}
			err := p.Validate()

			convey.Convey("Then validation should fail as malformed", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, model.ErrMalformed), convey.ShouldBeTrue)
			})
		})
	})
}

func TestPickSummaryValidate(t *testing.T) {
	convey.Convey("Given a PickSummary", t, func() {
		convey.Convey("When counts and percentage are consistent", func() {
			s := model.PickSummary{UserID: "u-1", TotalPicks: 10, CorrectPicks: 7, PickPercentage: 70.0}

			convey.Convey("Then it should validate", func() {
				convey.So(s.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the user has made no picks", func() {
			s := model.PickSummary{UserID: "u-2"}

			convey.Convey("Then zero counts and zero percentage should validate", func() {
				convey.So(s.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the user id is empty", func() {
			s := model.PickSummary{TotalPicks: 5, CorrectPicks: 2, PickPercentage: 40.0}
			err := s.Validate()

			convey.Convey("Then validation should fail as malformed", func() {
				convey.So(errors.Is(err, model.ErrMalformed), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When total_picks is negative", func() {
			s := model.PickSummary{UserID: "u-3", TotalPicks: -1}
			err := s.Validate()

			convey.Convey("Then validation should fail the invariant", func() {
				convey.So(errors.Is(err, model.ErrInvariant), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When correct_picks is negative", func() {
			s := model.PickSummary{UserID: "u-4", TotalPicks: 3, CorrectPicks: -2}
			err := s.Validate()

			convey.Convey("Then validation should fail the invariant", func() {
				convey.So(errors.Is(err, model.ErrInvariant), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When correct_picks exceeds total_picks", func() {
			s := model.PickSummary{UserID: "u-5", TotalPicks: 5, CorrectPicks: 7, PickPercentage: 100.0}
			err := s.Validate()

			convey.Convey("Then validation should fail the invariant", func() {
				convey.So(errors.Is(err, model.ErrInvariant), convey.ShouldBeTrue)
			})

			convey.Convey("And the error should name the offending user", func() {
				convey.So(err.Error(), convey.ShouldContainSubstring, "u-5")
			})
		})

		convey.Convey("When the percentage is out of range", func() {
			low := model.PickSummary{UserID: "u-6", TotalPicks: 10, CorrectPicks: 5, PickPercentage: -0.5}
			high := model.PickSummary{UserID: "u-7", TotalPicks: 10, CorrectPicks: 5, PickPercentage: 100.01}

			convey.Convey("Then both directions should fail the invariant", func() {
				convey.So(errors.Is(low.Validate(), model.ErrInvariant), convey.ShouldBeTrue)
				convey.So(errors.Is(high.Validate(), model.ErrInvariant), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the percentage sits exactly on a bound", func() {
			zero := model.PickSummary{UserID: "u-8", TotalPicks: 4, CorrectPicks: 0, PickPercentage: 0}
			full := model.PickSummary{UserID: "u-9", TotalPicks: 4, CorrectPicks: 4, PickPercentage: 100}

			convey.Convey("Then both bounds should validate", func() {
				convey.So(zero.Validate(), convey.ShouldBeNil)
				convey.So(full.Validate(), convey.ShouldBeNil)
			})
		})
	})
}
