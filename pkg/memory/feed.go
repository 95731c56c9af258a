package memory

import (
	"encoding/json"
	"time"
)

// feedTimeLayout is the session log timestamp format, HH:MM:SSTDD.MM.YYYY.
const feedTimeLayout = "15:04:05T02.01.2006"

// FeedFunc appends one line to the operator-facing feed log. Components
// receive it from the recorder so every event lands in one place.
type FeedFunc func(message, source string)

// FeedEntry is one operator-facing log line.
type FeedEntry struct {
	Timestamp time.Time
	Message   string
	Source    string
}

type feedEntryJSON struct {
	Timestamp string `json:"Timestamp"`
	Message   string `json:"Message"`
	Source    string `json:"Source"`
}

func (f FeedEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(feedEntryJSON{
		Timestamp: f.Timestamp.Format(feedTimeLayout),
		Message:   f.Message,
		Source:    f.Source,
	})
}

func (f *FeedEntry) UnmarshalJSON(data []byte) error {
	var aux feedEntryJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	ts, err := time.Parse(feedTimeLayout, aux.Timestamp)
	if err != nil {
		return err
	}
	f.Timestamp = ts
	f.Message = aux.Message
	f.Source = aux.Source
	return nil
}
