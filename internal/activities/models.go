package activities

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Activity is one extracurricular offering and its roster
type Activity struct {
	Name            string   `json:"-"` // Registry key, carried as the JSON object key
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// HasParticipant reports whether email is on the roster
func (a Activity) HasParticipant(email string) bool {
	return indexOf(a.Participants, email) >= 0
}

// SpotsLeft is capacity minus current roster size; negative when overfilled
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// IsFull reports whether the roster has reached max_participants
func (a Activity) IsFull() bool {
	return a.SpotsLeft() <= 0
}

// Clone returns a deep copy so callers never share the roster slice
func (a Activity) Clone() Activity {
	participants := make([]string, len(a.Participants))
	copy(participants, a.Participants)
	a.Participants = participants
	return a
}

func indexOf(list []string, value string) int {
	for i, v := range list {
		if v == value {
			return i
		}
	}
	return -1
}

// Catalog is the ordered view of the registry. It encodes as a JSON object
// keyed by activity name, keeping registry order.
type Catalog []Activity

// Find returns the activity with the given name
func (c Catalog) Find(name string) (Activity, bool) {
	for _, a := range c {
		if a.Name == name {
			return a, true
		}
	}
	return Activity{}, false
}

// Names lists activity names in order
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for _, a := range c {
		names = append(names, a.Name)
	}
	return names
}

func (c Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		if a.Participants == nil {
			a.Participants = []string{}
		}
		value, err := json.Marshal(a)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Catalog) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("catalog: expected object, got %v", tok)
	}

	out := Catalog{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("catalog: expected activity name, got %v", tok)
		}

		var a Activity
		if err := dec.Decode(&a); err != nil {
			return fmt.Errorf("catalog: activity %q: %w", name, err)
		}
		a.Name = name
		out = append(out, a)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = out
	return nil
}
