package usecase

import (
	"regexp"
	"strings"

	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/domain/entity"
)

var (
	makesRe   = regexp.MustCompile(`(?i)\b(made|makes|swish|good shot|great arc)\b`)
	missesRe  = regexp.MustCompile(`(?i)\b(missed|misses|off-balance|short|airball)\b`)
	layupsRe  = regexp.MustCompile(`(?i)\blayups?\b`)
	threesRe  = regexp.MustCompile(`(?i)\b(three-pointers?|3-pointers?|three pointer)\b`)
)

// AggregateStats folds per-frame results into the session summary. When
// structured shot records are present (mock mode) the running totals of the
// last record win; otherwise it falls back to keyword counts over the
// concatenated free-text feedback.
func AggregateStats(analyses []entity.FrameAnalysis) *entity.SessionStats {
	stats := &entity.SessionStats{}

	var lastShot *entity.ShotRecord
	threes := 0
	for i := range analyses {
		if analyses[i].Feedback != "" {
			stats.FramesAnalyzed++
		}
		if shot := analyses[i].Shot; shot != nil {
			lastShot = shot
			if threesRe.MatchString(shot.ShotType) {
				threes++
			}
		}
	}

	if lastShot != nil {
		stats.Makes = lastShot.TotalMakes
		stats.Misses = lastShot.TotalMisses
		stats.Layups = lastShot.TotalLayups
		stats.ThreePointers = threes
	} else {
		var b strings.Builder
		for i := range analyses {
			if analyses[i].Feedback == FramePlaceholder {
				continue
			}
			b.WriteString(analyses[i].Feedback)
			b.WriteByte('\n')
		}
		text := b.String()
		stats.Makes = len(makesRe.FindAllString(text, -1))
		stats.Misses = len(missesRe.FindAllString(text, -1))
		stats.Layups = len(layupsRe.FindAllString(text, -1))
		stats.ThreePointers = len(threesRe.FindAllString(text, -1))
	}

	if attempts := stats.Makes + stats.Misses; attempts > 0 {
		stats.FieldGoalPct = float64(stats.Makes) / float64(attempts) * 100
	}

	return stats
}
