package mqtt

import "strings"

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "vidyank"

// Topics builds topic names under one prefix.
type Topics struct {
	prefix string
}

// NewTopics returns a builder for prefix. Surrounding slashes are trimmed;
// an empty prefix falls back to DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// AuthEvent is where an auth or account event is published.
func (t Topics) AuthEvent(action string) string {
	return t.prefix + "/auth/" + action
}

// AllAuthEvents matches every auth event.
func (t Topics) AllAuthEvents() string {
	return t.prefix + "/auth/#"
}

// SystemStatus carries Core's retained online/offline state.
func (t Topics) SystemStatus() string {
	return t.prefix + "/system/status"
}
