package wall

import (
	"fmt"

	"vk-compliment-bot/internal/models"
)

// ExtractMedia returns the largest photo of the first photo attachment, or a
// viewer URL for the first video when the post has no photo.
func ExtractMedia(post models.Post) (string, models.MediaKind) {
	for _, a := range post.Attachments {
		if a.Type != "photo" || a.Photo == nil {
			continue
		}
		if u := largestSize(a.Photo.Sizes); u != "" {
			return u, models.MediaPhoto
		}
	}

	for _, a := range post.Attachments {
		if a.Type != "video" || a.Video == nil {
			continue
		}
		if a.Video.OwnerID != 0 && a.Video.ID != 0 {
			return fmt.Sprintf("https://vk.com/video%d_%d", a.Video.OwnerID, a.Video.ID), models.MediaVideo
		}
	}

	return "", models.MediaNone
}

func largestSize(sizes []models.PhotoSize) string {
	best := -1
	for i, s := range sizes {
		if best < 0 || s.Area() > sizes[best].Area() {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return sizes[best].URL
}
