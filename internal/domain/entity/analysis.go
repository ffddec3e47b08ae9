package entity

// FrameAnalysis is the per-frame result returned to the client and used to
// build the overlay. Timestamp is seconds from the start of the video,
// fixed to two decimals so it is stable in JSON and filter expressions.
type FrameAnalysis struct {
	Frame     string      `json:"frame"`
	Timestamp string      `json:"timestamp"`
	Feedback  string      `json:"feedback"`
	Shot      *ShotRecord `json:"shot,omitempty"`
}

// ShotRecord is the structured shot log produced in dev/mock mode. Running
// totals are cumulative as of the frame that produced the record.
type ShotRecord struct {
	OutcomeTimestamp string `json:"outcome_timestamp"`
	Result           string `json:"result"`
	ShotType         string `json:"shot_type"`
	TotalMakes       int    `json:"total_makes"`
	TotalMisses      int    `json:"total_misses"`
	TotalLayups      int    `json:"total_layups"`
	Feedback         string `json:"feedback"`
}

const (
	ShotResultMade   = "made"
	ShotResultMissed = "missed"
)

// SessionStats is the summary block of the analyze response.
type SessionStats struct {
	FramesAnalyzed int     `json:"frames_analyzed"`
	Makes          int     `json:"makes"`
	Misses         int     `json:"misses"`
	Layups         int     `json:"layups"`
	ThreePointers  int     `json:"three_pointers"`
	FieldGoalPct   float64 `json:"field_goal_pct"`
}
