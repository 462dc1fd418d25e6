package catalog

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"vk-compliment-bot/internal/models"

	"github.com/spf13/viper"
)

// Catalog holds the static, read-only data the bot works from: keyword sets
// for classification, message pools per category and translation fallbacks.
type Catalog struct {
	Keywords        map[models.Category][]string
	Compliments     map[models.Category][]string
	Translations    map[string]string
	NoPhotoMessage  string
	FallbackMessage string
	DefaultCaption  string
}

type fileCatalog struct {
	Keywords        map[string][]string `mapstructure:"keywords"`
	Compliments     map[string][]string `mapstructure:"compliments"`
	Translations    map[string]string   `mapstructure:"translations"`
	NoPhotoMessage  string              `mapstructure:"no_photo_message"`
	FallbackMessage string              `mapstructure:"fallback_message"`
	DefaultCaption  string              `mapstructure:"default_caption"`
}

func Default() *Catalog {
	c := &Catalog{
		Keywords:        make(map[models.Category][]string, len(defaultKeywords)),
		Compliments:     make(map[models.Category][]string, len(defaultCompliments)),
		Translations:    maps.Clone(defaultTranslations),
		NoPhotoMessage:  defaultNoPhotoMessage,
		FallbackMessage: defaultFallbackMessage,
		DefaultCaption:  defaultCaption,
	}
	for k, v := range defaultKeywords {
		c.Keywords[k] = slices.Clone(v)
	}
	for k, v := range defaultCompliments {
		c.Compliments[k] = slices.Clone(v)
	}
	return c
}

// LoadFile returns the default catalog with the entries of the given file
// (yaml, json or toml) layered on top. A category present in the file
// replaces the default list for that category.
func LoadFile(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read catalog from %s: %w", path, err)
	}

	var fc fileCatalog
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", path, err)
	}

	if err := c.merge(fc); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func (c *Catalog) merge(fc fileCatalog) error {
	for name, words := range fc.Keywords {
		category, err := models.ParseCategory(name)
		if err != nil {
			return err
		}
		if len(words) > 0 {
			c.Keywords[category] = lowerAll(words)
		}
	}
	for name, pool := range fc.Compliments {
		category, err := models.ParseCategory(name)
		if err != nil {
			return err
		}
		if len(pool) > 0 {
			c.Compliments[category] = slices.Clone(pool)
		}
	}
	for word, translated := range fc.Translations {
		c.Translations[strings.ToLower(word)] = translated
	}
	if fc.NoPhotoMessage != "" {
		c.NoPhotoMessage = fc.NoPhotoMessage
	}
	if fc.FallbackMessage != "" {
		c.FallbackMessage = fc.FallbackMessage
	}
	if fc.DefaultCaption != "" {
		c.DefaultCaption = fc.DefaultCaption
	}
	return nil
}

func (c *Catalog) Pool(category models.Category) []string {
	return c.Compliments[category]
}

func (c *Catalog) KeywordsFor(category models.Category) []string {
	return c.Keywords[category]
}

// EmptyPools lists the categories that have no messages configured.
func (c *Catalog) EmptyPools() []models.Category {
	var empty []models.Category
	for _, category := range models.AllCategories() {
		if len(c.Compliments[category]) == 0 {
			empty = append(empty, category)
		}
	}
	return empty
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, strings.ToLower(w))
	}
	return out
}
