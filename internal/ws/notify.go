package ws

import (
	"encoding/json"
)

// Scoped events are only delivered to clients watching the same scope,
// typically a job id.
type Scoped interface {
	Scope() string
}

func encode(v any) (string, []byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	scope := ""
	if s, ok := v.(Scoped); ok {
		scope = s.Scope()
	}
	return scope, b, nil
}
