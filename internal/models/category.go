package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCategory = errors.New("unknown category")

// Category is the topic a post or a scheduled message belongs to.
type Category string

const (
	CategorySketch             Category = "sketch"
	CategoryTattoo             Category = "tattoo"
	CategoryInProgress         Category = "in_progress"
	CategoryEquipment          Category = "equipment"
	CategoryAppointment        Category = "appointment"
	CategoryEquipmentAndStudio Category = "equipment_and_studio"

	// Scheduler-only categories, never produced by classification.
	CategoryWeekly             Category = "weekly"
	CategoryClientInteractions Category = "client_interactions"
	CategoryTattooIdeas        Category = "tattoo_ideas"
)

var allCategories = []Category{
	CategorySketch,
	CategoryTattoo,
	CategoryInProgress,
	CategoryEquipment,
	CategoryAppointment,
	CategoryEquipmentAndStudio,
	CategoryWeekly,
	CategoryClientInteractions,
	CategoryTattooIdeas,
}

func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

func ParseCategory(s string) (Category, error) {
	name := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, c := range allCategories {
		if c == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

func (c Category) String() string {
	return string(c)
}

// MediaKind is the type of media found in a post.
type MediaKind string

const (
	MediaNone  MediaKind = ""
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)
