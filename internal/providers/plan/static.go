package plan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mediagen/internal/domain"
)

const staticProviderName = "static"

// StaticPlanner produces a deterministic plan without calling any model. It
// keeps the assistant usable in keyless and CI environments.
type StaticPlanner struct{}

// NewStaticPlanner constructs the fallback planner.
func NewStaticPlanner() *StaticPlanner {
	return &StaticPlanner{}
}

// Plan splits the target duration evenly over three beats of the brief.
func (s *StaticPlanner) Plan(ctx context.Context, req Request) (*Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	brief := strings.TrimSpace(req.Brief)
	if brief == "" {
		return nil, domain.ErrInvalidPrompt
	}

	tag := language.Make(req.Locale)
	if tag == language.Und {
		tag = language.English
	}
	title := cases.Title(tag).String(brief)

	total := req.Duration
	if total <= 0 {
		total = 12 * time.Second
	}
	per := total.Seconds() / 3

	beats := []string{"establishing shot", "main action", "closing shot"}
	scenes := make([]Scene, 0, len(beats))
	for _, beat := range beats {
		scenes = append(scenes, Scene{
			Prompt:  fmt.Sprintf("%s, %s", brief, beat),
			Seconds: per,
		})
	}

	return &Plan{
		Title:    title,
		Scenes:   scenes,
		Keywords: extractKeywords(brief),
		Provider: staticProviderName,
	}, nil
}

var _ Planner = (*StaticPlanner)(nil)

func extractKeywords(brief string) []string {
	var out []string
	for _, word := range strings.Fields(strings.ToLower(brief)) {
		word = strings.Trim(word, ".,!?;:")
		if len(word) >= 4 {
			out = append(out, word)
		}
		if len(out) == 5 {
			break
		}
	}
	return out
}
