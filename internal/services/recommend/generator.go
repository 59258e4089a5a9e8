// Package recommend turns a mood into catalog-resolved media recommendations.
package recommend

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"norelock.dev/moodmix/backend/internal/models"
	"norelock.dev/moodmix/backend/internal/services/llm"
	"norelock.dev/moodmix/backend/internal/services/system"
	"norelock.dev/moodmix/backend/internal/utils"
)

var (
	jsonArrayPattern  = regexp.MustCompile(`(?s)\[.*\]`)
	listMarkerPattern = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s+`)
)

// formatHints describe the expected entry format per media type.
var formatHints = map[models.MediaType]string{
	models.MediaTypeMusic:    "songs that would match this mood. Return in format ['Artist - Song Title', ...]",
	models.MediaTypeMovies:   "movies that would match this mood. Return just movie titles ['Movie Title', ...]",
	models.MediaTypeBooks:    "books that would match this mood. Return in format ['Book Title by Author', ...]",
	models.MediaTypePodcasts: "podcasts that would match this mood. Return just podcast names ['Podcast Name', ...]",
}

// Generator produces candidate titles for a mood, from the language model
// when it answers and from the static fallback tables otherwise.
type Generator struct {
	textGen llm.TextGenerator
	logger  *utils.Logger
	metrics *system.MetricsService

	mu  sync.Mutex
	rng *rand.Rand
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithSeed makes fallback shuffling deterministic.
func WithSeed(seed uint64) GeneratorOption {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// NewGenerator creates a candidate generator. textGen may be nil, in which
// case every request is served from the fallback tables.
func NewGenerator(textGen llm.TextGenerator, logger *utils.Logger, metrics *system.MetricsService, opts ...GeneratorOption) *Generator {
	seed := uint64(time.Now().UnixNano())
	g := &Generator{
		textGen: textGen,
		logger:  logger.Named("candidate_generator"),
		metrics: metrics,
		rng:     rand.New(rand.NewPCG(seed, seed>>1)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns at most limit candidates. It never fails: model errors
// and unusable output fall back to the static tables.
func (g *Generator) Generate(ctx context.Context, mood string, mediaType models.MediaType, limit int) []string {
	if g.textGen != nil {
		systemPrompt, userPrompt := BuildPrompts(mood, mediaType, limit)
		content, err := g.textGen.Complete(ctx, systemPrompt, userPrompt)
		if err != nil {
			g.logger.Warn("Language model request failed, using fallback", "media_type", mediaType, "error", err)
		} else if candidates, err := ParseCandidates(content, mediaType, limit); err != nil {
			g.logger.Warn("Unparseable model output, using fallback", "media_type", mediaType, "error", err,
				"content", utils.TruncateString(content, 200))
		} else if len(candidates) > 0 {
			g.metrics.AddCandidates(mediaType.String(), "llm", len(candidates))
			return candidates
		} else {
			g.logger.Warn("Model returned no candidates, using fallback", "media_type", mediaType)
		}
	}

	candidates := g.Fallback(mood, mediaType, limit)
	g.metrics.AddCandidates(mediaType.String(), "fallback", len(candidates))
	return candidates
}

// Fallback picks the curated list for mood, shuffles a copy and truncates it.
func (g *Generator) Fallback(mood string, mediaType models.MediaType, limit int) []string {
	items := append([]string(nil), fallbackList(mood, mediaType)...)

	g.mu.Lock()
	g.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	g.mu.Unlock()

	return truncate(items, limit)
}

// BuildPrompts returns the system and user prompts for a request.
func BuildPrompts(mood string, mediaType models.MediaType, limit int) (string, string) {
	hint, ok := formatHints[mediaType]
	if !ok {
		hint = formatHints[models.MediaTypeMusic]
	}

	systemPrompt := fmt.Sprintf("You are a %s recommendation expert. Return only valid JSON arrays with no additional text.", mediaType)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Based on the mood/feeling: %q, recommend %d %s\n\n", mood, limit, hint))
	sb.WriteString("Please return ONLY a JSON array of strings in the exact format specified above.\n")
	sb.WriteString(fmt.Sprintf("Focus on popular, well-known %s that would be found in major databases.\n", mediaType))
	sb.WriteString("Make sure each entry follows the specified format exactly.")

	return systemPrompt, sb.String()
}

// ParseCandidates extracts candidates from raw model output. A JSON array
// literal is preferred; without one, output is read line by line. An array
// that does not decode is an error.
func ParseCandidates(content string, mediaType models.MediaType, limit int) ([]string, error) {
	if match := jsonArrayPattern.FindString(content); match != "" {
		var raw []any
		if err := json.Unmarshal([]byte(match), &raw); err != nil {
			return nil, fmt.Errorf("failed to decode candidate array: %w", err)
		}

		candidates := lo.FilterMap(raw, func(v any, _ int) (string, bool) {
			s, ok := v.(string)
			s = strings.TrimSpace(s)
			return s, ok && s != ""
		})
		return truncate(candidates, limit), nil
	}

	var candidates []string
	for _, line := range strings.Split(content, "\n") {
		if len(candidates) >= limit {
			break
		}

		line = listMarkerPattern.ReplaceAllString(strings.TrimSpace(line), "")
		line = strings.TrimSpace(strings.Trim(line, `"',`))
		if line == "" {
			continue
		}
		if mediaType == models.MediaTypeMusic && !strings.Contains(line, " - ") {
			continue
		}
		candidates = append(candidates, line)
	}

	return candidates, nil
}

func truncate(items []string, limit int) []string {
	if limit < 0 {
		limit = 0
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
