// Package hookio reads hook event records from stdin and emits structured
// decisions on stdout, matching the host agent's hook wire format.
package hookio

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// maxEventBytes caps stdin reads. Hook payloads are small JSON objects;
// 1 MB is generous headroom that prevents unbounded allocation.
const maxEventBytes = 1 << 20

// Read parses a single hook event from r.
func Read(r io.Reader) (*Event, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxEventBytes))
	if err != nil {
		return nil, fmt.Errorf("reading hook input: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, fmt.Errorf("no input received on stdin")
	}
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("invalid hook input JSON: %w", err)
	}
	if ev.HookEventName == "" {
		return nil, fmt.Errorf("missing hookEventName field")
	}
	return &ev, nil
}

// ReadAs parses a hook event from r and validates it matches the expected
// event name. Use this when a handler serves exactly one hook event.
func ReadAs(r io.Reader, eventName string) (*Event, error) {
	ev, err := Read(r)
	if err != nil {
		return nil, err
	}
	if ev.HookEventName != eventName {
		return nil, fmt.Errorf("expected %s event, got %s", eventName, ev.HookEventName)
	}
	return ev, nil
}

// Emit writes the decision as a single JSON object to w.
func Emit(w io.Writer, out Output) error {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshaling hook output: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("writing hook output: %w", err)
	}
	return nil
}
