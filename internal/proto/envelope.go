package proto

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Envelope is one presence frame. Data holds the JSON-like value produced by
// structpb: string, float64, bool, nil, []any or map[string]any.
type Envelope struct {
	Event string
	Data  any
}

func (e Envelope) Marshal() (*structpb.Struct, error) {
	s, err := structpb.NewStruct(map[string]any{
		"event": e.Event,
		"data":  e.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Event, err)
	}
	return s, nil
}

// Unmarshal reads an envelope. A frame without an event name yields an
// empty Event.
func Unmarshal(s *structpb.Struct) Envelope {
	f := s.GetFields()
	return Envelope{
		Event: f["event"].GetStringValue(),
		Data:  f["data"].AsInterface(),
	}
}

// ClientsUpdated builds the presence snapshot frame.
func ClientsUpdated(names []string) Envelope {
	list := make([]any, len(names))
	for i, n := range names {
		list[i] = n
	}
	return Envelope{Event: "clients-updated", Data: list}
}

// MessageFromClient builds the frame a client sends to chat.
func MessageFromClient(text string) Envelope {
	return Envelope{Event: "message-from-client", Data: map[string]any{"message": text}}
}

// MessageFromServer builds the relayed chat frame.
func MessageFromServer(fullName, text string) Envelope {
	return Envelope{Event: "message-from-server", Data: map[string]any{"fullName": fullName, "message": text}}
}

// Names reads the display names of a clients-updated frame.
func (e Envelope) Names() []string {
	list, _ := e.Data.([]any)
	names := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			names = append(names, s)
		}
	}
	return names
}

// Field returns a string field of an object payload, or "" when absent.
func (e Envelope) Field(name string) string {
	m, _ := e.Data.(map[string]any)
	s, _ := m[name].(string)
	return s
}
