package query

import "message-service/internal/models"

// Mode is the shape of query a Criteria resolves to.
type Mode int

const (
	// ModeDirected filters on the target id list and type only.
	ModeDirected Mode = iota
	// ModeConversation merges both directions of a two-party thread.
	ModeConversation
)

func (m Mode) String() string {
	if m == ModeConversation {
		return "conversation"
	}
	return "directed"
}

// Criteria describes which messages to fetch. It is a value type: every With method
// returns a modified copy and leaves the receiver untouched.
type Criteria struct {
	targetIDs  []string
	senderID   string
	targetType models.MessageType
}

// NewCriteria returns an empty Criteria.
func NewCriteria() Criteria {
	return Criteria{}
}

func (c Criteria) WithTargetIDs(ids ...string) Criteria {
	c.targetIDs = append([]string(nil), ids...)
	return c
}

func (c Criteria) WithSenderID(id string) Criteria {
	c.senderID = id
	return c
}

func (c Criteria) WithType(t models.MessageType) Criteria {
	c.targetType = t
	return c
}

// TargetIDs returns a copy of the target id list.
func (c Criteria) TargetIDs() []string {
	return append([]string(nil), c.targetIDs...)
}

func (c Criteria) SenderID() string {
	return c.senderID
}

// Type returns the type filter and whether one was set.
func (c Criteria) Type() (models.MessageType, bool) {
	return c.targetType, c.targetType != ""
}

// Mode selects the conversation mode when a sender and at least one target are present,
// unless the criteria asks for group messages: groups have no reply direction to pair.
// Only the first target id takes part in a conversation.
func (c Criteria) Mode() Mode {
	if c.senderID != "" && len(c.targetIDs) > 0 && c.targetType != models.MessageTypeGroup {
		return ModeConversation
	}
	return ModeDirected
}
