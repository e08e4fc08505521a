package egg

// growthThresholds is evaluated top-down; the first row whose minimum is
// reached wins. The two egg rows are a coarse progress bar inside one stage.
var growthThresholds = []struct {
	min      int64
	stage    Stage
	progress int
}{
	{30, StageHatched, 100},
	{20, StageHatching, 70},
	{10, StageEgg, 40},
	{0, StageEgg, 10},
}

// StageFor maps the total number of messages of an egg (all speakers) to its
// growth state. Negative counts are treated as zero.
func StageFor(totalMessageCount int64) GrowthState {
	for _, t := range growthThresholds {
		if totalMessageCount >= t.min {
			return GrowthState{Stage: t.stage, Progress: t.progress}
		}
	}
	last := growthThresholds[len(growthThresholds)-1]
	return GrowthState{Stage: last.stage, Progress: last.progress}
}
