package asmgen

// Milestone is a progress point of a generation run.
type Milestone int

// Milestones in the order they are reported.
const (
	StartInit Milestone = iota
	DoneInit
	StartTemporaryLabelsGenerate
	DoneTemporaryLabelsGenerate
	StartMainOutputSteps
	StartNewMainOutputStep
	DoneMainOutputSteps
	StartTemporaryLabelsRemoval
	EndTemporaryLabelsRemoval
	FinishingCleanup
	Done
)

var milestoneNames = [...]string{
	StartInit:                    "start init",
	DoneInit:                     "done init",
	StartTemporaryLabelsGenerate: "start temporary labels generate",
	DoneTemporaryLabelsGenerate:  "done temporary labels generate",
	StartMainOutputSteps:         "start main output steps",
	StartNewMainOutputStep:       "start new main output step",
	DoneMainOutputSteps:          "done main output steps",
	StartTemporaryLabelsRemoval:  "start temporary labels removal",
	EndTemporaryLabelsRemoval:    "end temporary labels removal",
	FinishingCleanup:             "finishing cleanup",
	Done:                         "done",
}

func (m Milestone) String() string {
	if m < 0 || int(m) >= len(milestoneNames) {
		return "unknown"
	}
	return milestoneNames[m]
}
