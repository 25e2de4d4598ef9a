package delivery

import "fmt"

// Stage is a step of the generation pipeline.
type Stage string

const (
	StageReceived  Stage = "received"
	StageRendering Stage = "rendering"
	StageComposing Stage = "composing"
	StagePersisted Stage = "persisted"
	StageNotifying Stage = "notifying"
	StageCompleted Stage = "completed"
	StageFailed    Stage = "failed"
)

// StageError reports the stage the pipeline was in when it failed, wrapping
// the component's typed error.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Result describes how far a request got. Key is set once the artifact is
// persisted, so it survives a later notification failure.
type Result struct {
	Key        string
	DeliveryID string
	Stage      Stage
}
