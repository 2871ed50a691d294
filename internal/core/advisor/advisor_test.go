package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/almanac/internal/core/model"
)

func summary(mode model.Mode, distanceMeters, durationMinutes float64) model.RouteSummary {
	return model.RouteSummary{
		Mode:     mode,
		Distance: distanceMeters,
		Duration: durationMinutes * 60,
		Steps:    []string{"沿路直行"},
	}
}

func TestRecommend_ShortWalkWithSlack(t *testing.T) {
	a := New(DefaultPolicy())

	walking := summary(model.ModeWalking, 800, 10)
	driving := summary(model.ModeDriving, 1200, 5)
	transit := summary(model.ModeTransit, 1500, 15)

	text, mode := a.Recommend(walking, driving, transit, 40)
	assert.Equal(t, model.ModeWalking, mode)
	assert.Equal(t, "建议步行前往，距离较近（0.8km），步行10分钟可到达。", text)
}

func TestRecommend_TimePressureDrives(t *testing.T) {
	a := New(DefaultPolicy())

	walking := summary(model.ModeWalking, 3000, 40)
	driving := summary(model.ModeDriving, 8000, 20)
	transit := summary(model.ModeTransit, 9000, 25)

	// idle 15 < min(25, 20) + 20
	text, mode := a.Recommend(walking, driving, transit, 15)
	assert.Equal(t, model.ModeDriving, mode)
	assert.Equal(t, "时间较紧张，建议打车前往，预计需要20分钟。", text)
}

func TestRecommend_TransitWhenCompetitive(t *testing.T) {
	a := New(DefaultPolicy())

	walking := summary(model.ModeWalking, 5000, 60)
	driving := summary(model.ModeDriving, 8000, 20)
	transit := summary(model.ModeTransit, 9000, 25)

	// 25 < 20 * 1.5
	text, mode := a.Recommend(walking, driving, transit, 60)
	assert.Equal(t, model.ModeTransit, mode)
	assert.Contains(t, text, "25分钟")
}

func TestRecommend_DrivingWhenTransitTooSlow(t *testing.T) {
	a := New(DefaultPolicy())

	walking := summary(model.ModeWalking, 5000, 60)
	driving := summary(model.ModeDriving, 8000, 20)
	transit := summary(model.ModeTransit, 12000, 40)

	// 40 >= 20 * 1.5
	text, mode := a.Recommend(walking, driving, transit, 60)
	assert.Equal(t, model.ModeDriving, mode)
	assert.Equal(t, "建议驾车或打车前往，预计需要20分钟，可以节省时间。", text)
}

func TestRecommend_NegativeIdleForcesTimePressure(t *testing.T) {
	a := New(DefaultPolicy())

	walking := summary(model.ModeWalking, 500, 6)
	driving := summary(model.ModeDriving, 2000, 8)
	transit := summary(model.ModeTransit, 2500, 12)

	// Overlapping events slipped past conflict checks; zero idle can never
	// satisfy the walking rule and must land on the driving branch.
	_, mode := a.Recommend(walking, driving, transit, -10)
	assert.Equal(t, model.ModeDriving, mode)
}

func TestRecommend_UnknownWalkingNeverWins(t *testing.T) {
	a := New(DefaultPolicy())

	walking := model.UnknownRoute(model.ModeWalking) // zero distance must not read as "close by"
	driving := summary(model.ModeDriving, 8000, 20)
	transit := summary(model.ModeTransit, 9000, 25)

	_, mode := a.Recommend(walking, driving, transit, 60)
	assert.Equal(t, model.ModeTransit, mode)
}

func TestRecommend_OnlyWalkingKnown(t *testing.T) {
	a := New(DefaultPolicy())

	walking := summary(model.ModeWalking, 700, 9)
	driving := model.UnknownRoute(model.ModeDriving)
	transit := model.UnknownRoute(model.ModeTransit)

	text, mode := a.Recommend(walking, driving, transit, 60)
	assert.Equal(t, model.ModeWalking, mode)
	assert.Contains(t, text, "步行")
}

func TestRecommend_CustomPolicy(t *testing.T) {
	a := New(Policy{WalkMaxMeters: 2000, BufferMinutes: 5, TransitFactor: 1.5})

	walking := summary(model.ModeWalking, 1800, 22)
	driving := summary(model.ModeDriving, 3000, 10)
	transit := summary(model.ModeTransit, 3500, 14)

	// 1800m within the raised threshold, 30 > 22 + 5
	_, mode := a.Recommend(walking, driving, transit, 30)
	assert.Equal(t, model.ModeWalking, mode)
}
