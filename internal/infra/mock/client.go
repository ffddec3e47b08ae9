package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/domain/entity"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/domain/port"
)

// Client substitutes canned responses for the vision API in dev mode. It
// keeps running shot totals across one session so the structured shot log
// is internally consistent.
type Client struct {
	mu     sync.Mutex
	calls  int
	makes  int
	misses int
	layups int
}

func NewClient() *Client {
	return &Client{}
}

var cannedFeedback = []string{
	"Good follow-through on the release, keep your elbow tucked in.",
	"Shot released on the way down, jump and release at the peak.",
	"Nice layup footwork, drive off the inside foot for more lift.",
	"Square your shoulders to the rim before the catch.",
	"Great arc on that three, hold the follow-through longer.",
	"Off-balance release, plant both feet before going up.",
}

var shotTypes = []string{"jump shot", "layup", "three-pointer"}

func (c *Client) AnalyzeFrame(ctx context.Context, frame []byte, prompt string) (*port.FrameFeedback, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Deterministic per-frame variety keyed on frame content, so the same
	// upload produces the same mock session.
	h := fnv.New32a()
	h.Write(frame)
	seed := int(h.Sum32())

	feedback := cannedFeedback[(seed+c.calls)%len(cannedFeedback)]
	shotType := shotTypes[(seed+c.calls)%len(shotTypes)]
	result := entity.ShotResultMade
	if (seed+c.calls)%3 == 1 {
		result = entity.ShotResultMissed
	}

	if result == entity.ShotResultMade {
		c.makes++
	} else {
		c.misses++
	}
	if shotType == "layup" {
		c.layups++
	}
	c.calls++

	shot := &entity.ShotRecord{
		OutcomeTimestamp: fmt.Sprintf("%d.00", c.calls*2),
		Result:           result,
		ShotType:         shotType,
		TotalMakes:       c.makes,
		TotalMisses:      c.misses,
		TotalLayups:      c.layups,
		Feedback:         feedback,
	}

	return &port.FrameFeedback{Text: feedback, Shot: shot}, nil
}
