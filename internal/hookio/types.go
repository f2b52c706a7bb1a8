package hookio

// Hook event names as delivered by the host agent.
const (
	EventPreToolUse = "PreToolUse"
	EventPreCompact = "PreCompact"
)

// PreCompact triggers.
const (
	TriggerManual = "manual"
	TriggerAuto   = "auto"
)

// Permission decisions for PreToolUse output.
const (
	DecisionAllow = "allow"
	DecisionAsk   = "ask"
	DecisionDeny  = "deny"
)

// Event is the JSON record the host agent delivers on stdin. All hook events
// share the base fields; event-specific fields are populated only for the
// matching event name. The discriminator arrives camelCase; the other base
// fields are snake_case.
type Event struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	CWD            string `json:"cwd"`
	PermissionMode string `json:"permission_mode"`
	HookEventName  string `json:"hookEventName"`

	// PreToolUse
	ToolName  string         `json:"tool_name,omitempty"`
	ToolInput map[string]any `json:"tool_input,omitempty"`

	// PreCompact
	Trigger            string `json:"trigger,omitempty"`
	CustomInstructions string `json:"custom_instructions,omitempty"`
}

// Command returns the literal command string for process-execution tools,
// or "" when the tool input carries none.
func (e *Event) Command() string {
	if e.ToolInput == nil {
		return ""
	}
	s, _ := e.ToolInput["command"].(string)
	return s
}

// PreToolUseOutput carries the permission decision for a PreToolUse event.
type PreToolUseOutput struct {
	HookEventName            string `json:"hookEventName"`
	PermissionDecision       string `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string `json:"permissionDecisionReason,omitempty"`
}

// Output is the complete JSON decision a hook writes to stdout. A hook that
// wants the default behavior emits nothing at all.
type Output struct {
	Continue           *bool             `json:"continue,omitempty"`
	StopReason         string            `json:"stopReason,omitempty"`
	SystemMessage      string            `json:"systemMessage,omitempty"`
	HookSpecificOutput *PreToolUseOutput `json:"hookSpecificOutput,omitempty"`
}

// Decision builds a PreToolUse permission decision output.
func Decision(decision, reason string) Output {
	return Output{
		HookSpecificOutput: &PreToolUseOutput{
			HookEventName:            EventPreToolUse,
			PermissionDecision:       decision,
			PermissionDecisionReason: reason,
		},
	}
}

// Stop builds an output that halts processing with the given reason.
func Stop(reason string) Output {
	cont := false
	return Output{Continue: &cont, StopReason: reason}
}
