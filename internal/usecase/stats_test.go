package usecase

import (
	"testing"

	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestAggregateStatsFreeText(t *testing.T) {
	analyses := []entity.FrameAnalysis{
		{Frame: "frame_0001.jpg", Timestamp: "0.00", Feedback: ""},
		{Frame: "frame_0002.jpg", Timestamp: "2.00", Feedback: "Nice layup, that one was made cleanly."},
		{Frame: "frame_0003.jpg", Timestamp: "4.00", Feedback: "You missed that three-pointer, follow through."},
		{Frame: "frame_0004.jpg", Timestamp: "6.00", Feedback: FramePlaceholder},
	}

	stats := AggregateStats(analyses)

	assert.Equal(t, 3, stats.FramesAnalyzed, "placeholder still counts as analyzed")
	assert.Equal(t, 1, stats.Makes)
	assert.Equal(t, 1, stats.Misses)
	assert.Equal(t, 1, stats.Layups)
	assert.Equal(t, 1, stats.ThreePointers)
	assert.InDelta(t, 50.0, stats.FieldGoalPct, 0.01)
}

func TestAggregateStatsStructured(t *testing.T) {
	analyses := []entity.FrameAnalysis{
		{Frame: "frame_0001.jpg", Timestamp: "0.00"},
		{
			Frame: "frame_0002.jpg", Timestamp: "2.00", Feedback: "made it",
			Shot: &entity.ShotRecord{Result: entity.ShotResultMade, ShotType: "three-pointer", TotalMakes: 1, TotalMisses: 0},
		},
		{
			Frame: "frame_0003.jpg", Timestamp: "4.00", Feedback: "missed",
			Shot: &entity.ShotRecord{Result: entity.ShotResultMissed, ShotType: "layup", TotalMakes: 1, TotalMisses: 1, TotalLayups: 1},
		},
	}

	stats := AggregateStats(analyses)

	assert.Equal(t, 1, stats.Makes, "last record's running totals win")
	assert.Equal(t, 1, stats.Misses)
	assert.Equal(t, 1, stats.Layups)
	assert.Equal(t, 1, stats.ThreePointers)
	assert.InDelta(t, 50.0, stats.FieldGoalPct, 0.01)
}

func TestAggregateStatsEmpty(t *testing.T) {
	stats := AggregateStats(nil)
	assert.Zero(t, stats.FramesAnalyzed)
	assert.Zero(t, stats.FieldGoalPct)
}
