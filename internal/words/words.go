package words

import (
	"context"
	"log"
	"math/rand"
	"time"
)

// Catalog is a static in-memory keyword source. It always returns a
// non-empty word.
type Catalog struct {
	words []string
}

func NewCatalog(list []string) *Catalog {
	if len(list) == 0 {
		list = defaultWords
	}
	return &Catalog{words: list}
}

func Default() *Catalog {
	return NewCatalog(nil)
}

func (c *Catalog) RandomKeyword() string {
	return c.words[rand.Intn(len(c.words))]
}

// RandomWordQuerier is implemented by the durable store's keyword
// catalog table.
type RandomWordQuerier interface {
	RandomWord(ctx context.Context) (string, error)
}

// StoreSource draws keywords from the durable catalog and falls back
// to a static catalog when the store misbehaves, keeping the
// "non-empty, always" contract.
type StoreSource struct {
	querier  RandomWordQuerier
	fallback *Catalog
}

func NewStoreSource(querier RandomWordQuerier, fallback *Catalog) *StoreSource {
	if fallback == nil {
		fallback = Default()
	}
	return &StoreSource{querier: querier, fallback: fallback}
}

func (s *StoreSource) RandomKeyword() string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	word, err := s.querier.RandomWord(ctx)
	if err != nil || word == "" {
		log.Printf("[RandomKeyword] store source failed (%v), using static catalog", err)
		return s.fallback.RandomKeyword()
	}
	return word
}

var defaultWords = []string{
	"apple", "banana", "bicycle", "bridge", "butterfly", "cactus",
	"camera", "castle", "cloud", "compass", "dolphin", "dragon",
	"elephant", "firetruck", "flamingo", "guitar", "hamburger",
	"helicopter", "igloo", "island", "jellyfish", "kangaroo",
	"lighthouse", "mermaid", "microscope", "mountain", "mushroom",
	"octopus", "owl", "palette", "parachute", "penguin", "pirate",
	"pyramid", "rainbow", "robot", "rocket", "sandcastle", "scarecrow",
	"snowman", "spider", "submarine", "telescope", "tornado",
	"treasure", "umbrella", "unicorn", "volcano", "waterfall", "wizard",
}
