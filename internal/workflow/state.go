package workflow

// State is the tagging workflow's position in its lifecycle. A session moves
// Idle → Loading → Presenting → Deciding → Moving → Loading… until the source
// folder is exhausted. Presenting is the suspension point: the session holds
// there, indefinitely, until the user picks a label.
type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StatePresenting State = "presenting"
	StateDeciding   State = "deciding"
	StateMoving     State = "moving"
	StateExhausted  State = "exhausted"
	StateFailed     State = "failed"
)
