package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"vk-compliment-bot/internal/captioner"
	"vk-compliment-bot/internal/catalog"
	"vk-compliment-bot/internal/classifier"
	"vk-compliment-bot/internal/compliment"
	"vk-compliment-bot/internal/config"
	"vk-compliment-bot/internal/job"
	"vk-compliment-bot/internal/storage"
	"vk-compliment-bot/internal/translator"
	"vk-compliment-bot/internal/wall"
	"vk-compliment-bot/pkg/logger"

	"github.com/joho/godotenv"
)

// printNotifier prints messages instead of sending them.
type printNotifier struct {
	sent []string
}

func (p *printNotifier) Notify(ctx context.Context, text string) error {
	p.sent = append(p.sent, text)
	fmt.Printf("  -> would send: %s\n", text)
	return nil
}

// noCaption skips image captioning unless -caption is set.
type noCaption struct{}

func (noCaption) Caption(ctx context.Context, imageURL string) string {
	fmt.Printf("  (captioning skipped for %s)\n", imageURL)
	return ""
}

func main() {
	withCaption := flag.Bool("caption", false, "call the captioning providers for photos")
	fromStore := flag.Bool("from-store", false, "start from a copy of the configured state instead of an empty one")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("debug", nil)

	fmt.Println("=== Dry run: VK wall poll ===")
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client := wall.New(cfg.VK)
	posts, err := client.FetchPosts(ctx)
	if err != nil {
		fmt.Printf("✗ Fetch failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Fetched %d posts\n", len(posts))
	for i, p := range posts {
		url, kind := wall.ExtractMedia(p)
		fmt.Printf("  %d: id=%d date=%s pinned=%v media=%s %s\n",
			i+1, p.ID, p.CreatedAt().Format(time.RFC3339), bool(p.IsPinned), kind, url)
	}
	fmt.Println()

	mem := storage.NewMemoryStore()
	if *fromStore {
		seedFromStore(ctx, cfg.Storage, mem)
	}

	cat, err := catalog.LoadFile(cfg.App.CatalogPath)
	if err != nil {
		fmt.Printf("✗ Catalog: %v, using built-in\n", err)
		cat = catalog.Default()
	}

	var capt job.Captioner = noCaption{}
	if *withCaption {
		capt = captioner.New(
			captioner.NewProviders(ctx, cfg.Captioner),
			translator.New(cfg.Captioner, cat.Translations),
			cat.DefaultCaption,
		)
	}

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		loc = time.UTC
	}

	out := &printNotifier{}
	runner := job.New(job.Deps{
		Store:          mem,
		Poller:         wall.NewPoller(client, mem, wall.WithWatermarkLocation(loc)),
		Captioner:      capt,
		Classifier:     classifier.New(cat),
		Selector:       compliment.New(cat, mem),
		Notifier:       out,
		NoPhotoMessage: cat.NoPhotoMessage,
	}, job.WithLocation(loc))

	fmt.Println("Running one poll...")
	runner.RunPoll(ctx)

	fmt.Println()
	fmt.Printf("=== Done: %d message(s), state saved %d time(s) in memory ===\n", len(out.sent), mem.Saves)
}

func seedFromStore(ctx context.Context, cfg config.StorageConfig, mem *storage.MemoryStore) {
	store, err := storage.New(ctx, cfg)
	if err != nil {
		fmt.Printf("✗ State store: %v, starting empty\n", err)
		return
	}
	defer store.Close()

	state, err := store.Load(ctx)
	if err != nil {
		fmt.Printf("✗ Load state: %v, starting empty\n", err)
		return
	}
	if err := mem.Save(ctx, state); err != nil {
		fmt.Printf("✗ Copy state: %v\n", err)
		return
	}
	mem.Saves = 0
	fmt.Printf("✓ Loaded state with %d processed posts\n", len(state.ProcessedPosts))
}
