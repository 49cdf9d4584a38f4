package chat

import "fmt"

// FlowState tracks one submit flow: idle -> pending -> succeeded | failed -> pending ...
type FlowState int

const (
	Idle FlowState = iota
	Pending
	Succeeded
	Failed
)

var flowStateNames = [...]string{"idle", "pending", "succeeded", "failed"}

func (s FlowState) String() string {
	if s < 0 || int(s) >= len(flowStateNames) {
		return fmt.Sprintf("FlowState(%d)", int(s))
	}
	return flowStateNames[s]
}

// MarshalText renders the state by name in JSON payloads
func (s FlowState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name
func (s *FlowState) UnmarshalText(text []byte) error {
	for i, name := range flowStateNames {
		if name == string(text) {
			*s = FlowState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown flow state %q", text)
}
