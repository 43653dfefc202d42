package seasonqueue

// RolloverJob triggers one season rollover pass. It carries no arguments;
// the pass itself decides what (if anything) needs finishing or
// activating.
type RolloverJob struct{}

// Kind returns the job type identifier for River.
func (RolloverJob) Kind() string { return "season_rollover" }
