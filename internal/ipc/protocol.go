package ipc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Speed is a playback-rate multiplier that accepts both the wire form
// ("1.25", string-encoded) and a bare JSON number, since both client
// generations exist in the wild.
type Speed float64

func (s *Speed) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) >= 2 && trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("speed %q is not numeric", raw)
		}
		*s = Speed(value)
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*s = Speed(value)
	return nil
}

func (s Speed) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatFloat(float64(s), 'f', 2, 64))
}

// Request is one synthesis request. All fields but Text are optional on the
// wire; the server fills defaults.
type Request struct {
	Text     string `json:"text"`
	Voice    string `json:"voice,omitempty"`
	Speed    Speed  `json:"speed,omitempty"`
	LangCode string `json:"lang_code,omitempty"`
}

// Defaults supplies values for request fields the client omitted.
type Defaults struct {
	Voice    string
	Speed    float64
	LangCode string
}

func (r *Request) applyDefaults(d Defaults) {
	if strings.TrimSpace(r.Voice) == "" {
		r.Voice = d.Voice
	}
	if r.Speed <= 0 {
		r.Speed = Speed(d.Speed)
	}
	if strings.TrimSpace(r.LangCode) == "" {
		r.LangCode = d.LangCode
	}
}

// Response statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Response is the single reply sent per connection.
type Response struct {
	Status    string `json:"status"`
	AudioFile string `json:"audio_file,omitempty"`
	Message   string `json:"message,omitempty"`
}

// OK builds a success response carrying the finished audio file path.
func OK(audioFile string) Response {
	return Response{Status: StatusOK, AudioFile: audioFile}
}

// Errorf builds an error response with a human-readable message.
func Errorf(format string, args ...any) Response {
	return Response{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}
