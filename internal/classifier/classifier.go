package classifier

import (
	"strings"

	"vk-compliment-bot/internal/catalog"
	"vk-compliment-bot/internal/models"
	"vk-compliment-bot/pkg/logger"
)

// Priority is the order categories are tested in. The first category with a
// matching keyword wins.
var Priority = []models.Category{
	models.CategoryAppointment,
	models.CategoryInProgress,
	models.CategoryTattoo,
	models.CategorySketch,
	models.CategoryEquipment,
	models.CategoryEquipmentAndStudio,
}

const DefaultCategory = models.CategoryTattoo

type Classifier struct {
	keywords map[models.Category][]string
}

func New(c *catalog.Catalog) *Classifier {
	keywords := make(map[models.Category][]string, len(Priority))
	for _, category := range Priority {
		keywords[category] = c.KeywordsFor(category)
	}
	return &Classifier{keywords: keywords}
}

// Classify checks the post body first and the image caption second. Keywords
// match as plain substrings of the lowercased text.
func (c *Classifier) Classify(body, caption string, kind models.MediaKind) models.Category {
	for _, field := range []struct {
		name string
		text string
	}{
		{"body", body},
		{"caption", caption},
	} {
		text := strings.ToLower(field.text)
		if text == "" {
			continue
		}
		if category, ok := c.match(text); ok {
			logger.Debug("Post classified",
				logger.String("category", string(category)),
				logger.String("matched_on", field.name),
			)
			return category
		}
	}

	logger.Debug("No keywords matched, using default category",
		logger.String("category", string(DefaultCategory)),
		logger.String("media_kind", string(kind)),
	)
	return DefaultCategory
}

func (c *Classifier) match(text string) (models.Category, bool) {
	for _, category := range Priority {
		for _, keyword := range c.keywords[category] {
			if keyword != "" && strings.Contains(text, keyword) {
				return category, true
			}
		}
	}
	return "", false
}
