package schedbot

// Stage is the step of a lookup conversation.
type Stage int

// Conversation stages. A user with no stored conversation is in the
// terminal state and only /start or a shortcut command begins a new one.
const (
	StageSelectingAction Stage = iota
	StageGettingInfo
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageSelectingAction:
		return "selecting_action"
	case StageGettingInfo:
		return "getting_info"
	default:
		return "unknown"
	}
}

// Conversation is the per-user dialogue state.
type Conversation struct {
	Stage Stage

	// Kind is the pending query kind; zero until the user picks one.
	Kind QueryKind
}

// SessionStore holds conversations keyed by user ID.
type SessionStore interface {
	Get(userID int64) (Conversation, bool)
	Set(userID int64, conv Conversation)
	Delete(userID int64)
}
