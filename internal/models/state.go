package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const legacyUsedSuffix = "_compliments_used"

var watermarkLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// BotState is the bot's only durable memory.
type BotState struct {
	LastChecked                *string               `json:"last_checked"`
	ProcessedPosts             map[string]bool       `json:"processed_posts"`
	UsedCompliments            map[Category][]string `json:"used_compliments"`
	LastEquipmentAndStudioDay  *int                  `json:"last_equipment_and_studio_day"`
	LastEquipmentAndStudioWeek string                `json:"last_equipment_and_studio_week,omitempty"`
}

func NewBotState() *BotState {
	s := &BotState{}
	s.normalize()
	return s
}

func (s *BotState) normalize() {
	if s.ProcessedPosts == nil {
		s.ProcessedPosts = make(map[string]bool)
	}
	if s.UsedCompliments == nil {
		s.UsedCompliments = make(map[Category][]string)
	}
}

// UnmarshalJSON also accepts the flat "<category>_compliments_used" keys
// of older state files.
func (s *BotState) UnmarshalJSON(data []byte) error {
	type plain BotState
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = BotState(p)
	s.normalize()

	for key, value := range raw {
		name, ok := strings.CutSuffix(key, legacyUsedSuffix)
		if !ok {
			continue
		}
		category, err := ParseCategory(name)
		if err != nil {
			continue
		}
		if len(s.UsedCompliments[category]) > 0 {
			continue
		}
		var used []string
		if err := json.Unmarshal(value, &used); err != nil {
			return fmt.Errorf("legacy key %s: %w", key, err)
		}
		if len(used) > 0 {
			s.UsedCompliments[category] = used
		}
	}

	return nil
}

func (s *BotState) IsProcessed(postID string) bool {
	return s.ProcessedPosts[postID]
}

func (s *BotState) MarkProcessed(postID string) {
	s.normalize()
	s.ProcessedPosts[postID] = true
}

func (s *BotState) Used(c Category) []string {
	return s.UsedCompliments[c]
}

func (s *BotState) AddUsed(c Category, message string) {
	s.normalize()
	s.UsedCompliments[c] = append(s.UsedCompliments[c], message)
}

func (s *BotState) ResetUsed(c Category) {
	s.normalize()
	s.UsedCompliments[c] = []string{}
}

// Watermark parses last_checked. ok is false when the watermark is absent.
// Values without an offset were written as local wall time and are read in
// loc; a nil loc means UTC.
func (s *BotState) Watermark(loc *time.Location) (t time.Time, ok bool, err error) {
	if s.LastChecked == nil || *s.LastChecked == "" {
		return time.Time{}, false, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range watermarkLayouts {
		if t, err := time.ParseInLocation(layout, *s.LastChecked, loc); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid last_checked %q", *s.LastChecked)
}

func (s *BotState) SetWatermark(t time.Time) {
	v := t.UTC().Format(time.RFC3339)
	s.LastChecked = &v
}

func (s *BotState) ClearWatermark() {
	s.LastChecked = nil
}
