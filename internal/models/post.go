package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Post is one item of a VK wall.get response.
type Post struct {
	ID          int64        `json:"id"`
	OwnerID     int64        `json:"owner_id"`
	Date        int64        `json:"date"`
	IsPinned    Flag         `json:"is_pinned"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
}

func (p Post) CreatedAt() time.Time {
	return time.Unix(p.Date, 0).UTC()
}

func (p Post) Key() string {
	return fmt.Sprintf("%d", p.ID)
}

type Attachment struct {
	Type  string `json:"type"`
	Photo *Photo `json:"photo,omitempty"`
	Video *Video `json:"video,omitempty"`
}

type Photo struct {
	ID      int64       `json:"id"`
	OwnerID int64       `json:"owner_id"`
	Sizes   []PhotoSize `json:"sizes"`
}

type PhotoSize struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s PhotoSize) Area() int {
	return s.Width * s.Height
}

type Video struct {
	ID      int64  `json:"id"`
	OwnerID int64  `json:"owner_id"`
	Title   string `json:"title,omitempty"`
}

// Flag decodes VK boolean fields, which arrive as 0/1 or as JSON booleans.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "null", "0", "false":
		*f = false
		return nil
	case "1", "true":
		*f = true
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid flag value %s", data)
	}
	v, err := n.Int64()
	if err != nil {
		return fmt.Errorf("invalid flag value %s", data)
	}
	*f = v != 0
	return nil
}

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}
