package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/chapterforge/chapterforge/internal/llm"
	"github.com/chapterforge/chapterforge/pkg/types"
	"go.uber.org/zap"
)

// defaultHeadSampleLines is used when a PipelineConfig does not set one.
const defaultHeadSampleLines = 3000

var chapterListLineRe = regexp.MustCompile(`^\s*(\d+)\.\s+(.+?)\s*$`)

// Identifier is stage 1: a single LM call over a head-of-text sample that
// produces a chapter count and a parsed list of identities.
type Identifier struct {
	client         llm.Client
	headSampleLines int
	log            *zap.Logger
}

// NewIdentifier builds an Identifier bound to the given LM client.
func NewIdentifier(client llm.Client, headSampleLines int, log *zap.Logger) *Identifier {
	if headSampleLines <= 0 {
		headSampleLines = defaultHeadSampleLines
	}
	return &Identifier{client: client, headSampleLines: headSampleLines, log: log}
}

// Identify asks the LM for the chapter count and list, parses the list, and
// rejects duplicate chapter numbers.
func (id *Identifier) Identify(ctx context.Context, doc *types.Document) (int, []types.ChapterIdentity, error) {
	sample := doc.HeadSample(id.headSampleLines)
	prompt := buildIdentifyPrompt(sample)

	raw, err := id.client.Complete(ctx, llm.CompletionRequest{
		SchemaName: llm.SchemaIdentify,
		Schema:     llm.IdentifySchema,
		Prompt:     prompt,
	})
	if err != nil {
		return 0, nil, &LMError{Stage: "identify", Err: err}
	}

	var resp llm.IdentifyResponse
	if err := unmarshalResponse(raw, &resp); err != nil {
		return 0, nil, &LMError{Stage: "identify", Err: err}
	}

	identities, err := parseChapterList(resp.ChapterList, id.log)
	if err != nil {
		return 0, nil, err
	}

	if resp.ChapterCount != len(identities) {
		if id.log != nil {
			id.log.Warn("chapter_count disagrees with parsed chapter list length",
				zap.Int("chapter_count", resp.ChapterCount),
				zap.Int("parsed_count", len(identities)))
		}
	}

	return len(identities), identities, nil
}

// parseChapterList parses a newline-delimited "N. Title" list, skipping
// unparseable lines with a logged warning, and rejecting duplicate numbers.
func parseChapterList(list string, log *zap.Logger) ([]types.ChapterIdentity, error) {
	var identities []types.ChapterIdentity
	seen := make(map[int]bool)

	for _, line := range strings.Split(list, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		m := chapterListLineRe.FindStringSubmatch(trimmed)
		if m == nil {
			if log != nil {
				log.Warn("skipping unparseable chapter list line", zap.String("line", trimmed))
			}
			continue
		}

		var number int
		if _, err := fmt.Sscanf(m[1], "%d", &number); err != nil {
			if log != nil {
				log.Warn("skipping chapter list line with unparseable number", zap.String("line", trimmed))
			}
			continue
		}
		title := strings.TrimSpace(m[2])

		if seen[number] {
			return nil, &IdentityConflict{Number: number}
		}
		seen[number] = true

		identities = append(identities, types.ChapterIdentity{Number: number, Title: title})
	}

	return identities, nil
}

func buildIdentifyPrompt(sample string) string {
	var b strings.Builder
	b.WriteString("You are identifying the chapter structure of a book from its opening text.\n")
	b.WriteString("Return the number of chapters and, for each one, a line formatted as \"N. Title\".\n\n")
	b.WriteString(sample)
	return b.String()
}
