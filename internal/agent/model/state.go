package model

// TurnState is the per-message scratch space. It is owned by one pipeline
// invocation; stages run sequentially, so it carries no lock.
//   - Values feeds downstream template substitution.
//   - Data carries structured values for programmatic consumers.
type TurnState struct {
	Values map[string]string
	Data   map[string]any
}

func NewTurnState() *TurnState {
	return &TurnState{
		Values: make(map[string]string),
		Data:   make(map[string]any),
	}
}

// Merge unions other into s. Values from other win on key collision.
func (s *TurnState) Merge(other *TurnState) {
	if other == nil {
		return
	}
	for k, v := range other.Values {
		s.Values[k] = v
	}
	for k, v := range other.Data {
		s.Data[k] = v
	}
}

func (s *TurnState) SetValue(key, value string) {
	s.Values[key] = value
}

func (s *TurnState) SetData(key string, value any) {
	s.Data[key] = value
}
