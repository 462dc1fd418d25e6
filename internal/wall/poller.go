package wall

import (
	"context"
	"time"

	"vk-compliment-bot/internal/models"
	"vk-compliment-bot/pkg/logger"
)

type Fetcher interface {
	FetchPosts(ctx context.Context) ([]models.Post, error)
}

type Saver interface {
	Save(ctx context.Context, state *models.BotState) error
}

// Result describes the post reported by one poll.
type Result struct {
	Found     bool
	PostID    string
	MediaURL  string
	MediaKind models.MediaKind
	Text      string
}

type Poller struct {
	fetcher  Fetcher
	saver    Saver
	location *time.Location
}

func NewPoller(fetcher Fetcher, saver Saver, opts ...PollerOption) *Poller {
	p := &Poller{fetcher: fetcher, saver: saver, location: time.UTC}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

type PollerOption func(*Poller)

// WithWatermarkLocation sets the zone used for legacy watermarks stored
// without an offset.
func WithWatermarkLocation(loc *time.Location) PollerOption {
	return func(p *Poller) {
		if loc != nil {
			p.location = loc
		}
	}
}

// PollOnce reports at most one new post. Fetch failures are logged and
// reported as "nothing found".
func (p *Poller) PollOnce(ctx context.Context, state *models.BotState) Result {
	posts, err := p.fetcher.FetchPosts(ctx)
	if err != nil {
		logger.Error("Failed to fetch wall posts", logger.Err(err))
		return Result{}
	}
	if len(posts) == 0 {
		logger.Warn("Wall response contains no posts")
		return Result{}
	}

	watermark, hasWatermark, err := state.Watermark(p.location)
	if err != nil {
		logger.Warn("Invalid watermark, resetting", logger.Err(err))
		state.ClearWatermark()
		hasWatermark = false
	}

	for _, post := range posts {
		key := post.Key()
		created := post.CreatedAt()

		if state.IsProcessed(key) {
			continue
		}
		if bool(post.IsPinned) && hasWatermark && !created.After(watermark) {
			logger.Info("Skipping old pinned post", logger.String("post_id", key))
			continue
		}
		if hasWatermark && !created.After(watermark) {
			continue
		}

		state.SetWatermark(created)
		state.MarkProcessed(key)
		p.save(ctx, state)

		mediaURL, kind := ExtractMedia(post)
		logger.Info("New post found",
			logger.String("post_id", key),
			logger.String("media_kind", string(kind)),
			logger.Bool("has_text", post.Text != ""),
		)

		return Result{
			Found:     true,
			PostID:    key,
			MediaURL:  mediaURL,
			MediaKind: kind,
			Text:      post.Text,
		}
	}

	newest := newestDate(posts)
	if !hasWatermark || newest.After(watermark) {
		state.SetWatermark(newest)
		p.save(ctx, state)
	}

	logger.Info("No new posts", logger.Int("fetched", len(posts)))
	return Result{}
}

func (p *Poller) save(ctx context.Context, state *models.BotState) {
	if err := p.saver.Save(ctx, state); err != nil {
		logger.Error("Failed to save state", logger.Err(err))
	}
}

func newestDate(posts []models.Post) time.Time {
	var newest time.Time
	for _, post := range posts {
		if t := post.CreatedAt(); t.After(newest) {
			newest = t
		}
	}
	return newest
}
