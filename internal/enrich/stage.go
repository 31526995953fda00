package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prismworks/prism/internal/llm"
	"github.com/prismworks/prism/internal/source"
	"github.com/prismworks/prism/pkg/formatting"
)

// maxPromptRunes caps how much document text is sent to the model per stage.
const maxPromptRunes = 5000

func ensureLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// Stage is one language-model enrichment stage. Stages are pure with respect
// to pipeline state: they read documents and return one Record per document,
// populated only in the contribution field the stage owns.
type Stage struct {
	name      string
	system    string
	completer llm.Completer
	logger    *slog.Logger
	prompt    func(doc source.Document) string
	parse     func(content string) (Record, error)
	degraded  func() Record
}

// Name returns the stage name used in graph wiring and logs.
func (s *Stage) Name() string {
	return s.name
}

// Enrich produces one record per document, in document order. A model or
// parse failure for a single document degrades that document's contribution
// to an empty result with a warning; it never fails the stage. Context
// cancellation is the only error surfaced.
func (s *Stage) Enrich(ctx context.Context, docs []source.Document) ([]Record, error) {
	records := make([]Record, len(docs))

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := s.completer.Complete(ctx, s.system, s.prompt(doc))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.WarnContext(
				ctx, "model call failed, degrading to empty result",
				"stage", s.name,
				"document", doc.Title,
				"error", err,
			)
			records[i] = s.degraded()
			continue
		}

		record, err := s.parse(content)
		if err != nil {
			s.logger.WarnContext(
				ctx, "model response unparseable, degrading to empty result",
				"stage", s.name,
				"document", doc.Title,
				"error", err,
			)
			records[i] = s.degraded()
			continue
		}

		records[i] = record
	}

	return records, nil
}

// excerpt truncates document text to the per-stage prompt budget without
// splitting a multi-byte rune.
func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= maxPromptRunes {
		return text
	}
	return string(runes[:maxPromptRunes])
}

// NewSummarizer builds the summary stage: an abstract of at most 200 words,
// key points, and recommended actions.
func NewSummarizer(completer llm.Completer, logger *slog.Logger) *Stage {
	type response struct {
		Summary   string   `json:"summary"`
		KeyPoints []string `json:"key_points"`
		Actions   []string `json:"recommended_actions"`
	}

	return &Stage{
		name:      "summarize",
		system:    "You are an expert document analyst.",
		completer: completer,
		logger:    ensureLogger(logger),
		prompt: func(doc source.Document) string {
			return fmt.Sprintf(
				"Summarize the following document professionally in no more than 200 words. "+
					"If the text has multiple sections, include one key sentence per section. "+
					"Do not repeat the text; synthesize it.\n"+
					"Return a JSON object with this exact structure:\n"+
					"{\n"+
					"  \"summary\": \"...\",\n"+
					"  \"key_points\": [\"...\"],\n"+
					"  \"recommended_actions\": [\"...\"]\n"+
					"}\n\n"+
					"Document titled %q:\n%s",
				doc.Title, excerpt(doc.Text),
			)
		},
		parse: func(content string) (Record, error) {
			res, err := formatting.Parse[response](content)
			if err != nil {
				return Record{}, err
			}
			return Record{Summary: &Summary{
				Abstract:  res.Summary,
				KeyPoints: emptyIfNil(res.KeyPoints),
				Actions:   emptyIfNil(res.Actions),
			}}, nil
		},
		degraded: func() Record {
			return Record{Summary: &Summary{KeyPoints: []string{}, Actions: []string{}}}
		},
	}
}

// NewKeywords builds the keyword stage: the ten most relevant domain terms.
func NewKeywords(completer llm.Completer, logger *slog.Logger) *Stage {
	type response struct {
		Keywords []string `json:"keywords"`
	}

	return &Stage{
		name:      "keywords",
		system:    "You are an expert at identifying keywords in documents.",
		completer: completer,
		logger:    ensureLogger(logger),
		prompt: func(doc source.Document) string {
			return fmt.Sprintf(
				"Analyze the following text and extract the 10 most relevant keywords. "+
					"Keywords must be specific terms from the document's domain.\n"+
					"Return a JSON object with this exact structure:\n"+
					"{\n"+
					"  \"keywords\": [\"KEYWORD 1\", \"KEYWORD 2\", ...]\n"+
					"}\n\n"+
					"Text to analyze:\n%s",
				excerpt(doc.Text),
			)
		},
		parse: func(content string) (Record, error) {
			res, err := formatting.Parse[response](content)
			if err != nil {
				return Record{}, err
			}
			return Record{Keywords: &Keywords{Keywords: emptyIfNil(res.Keywords)}}, nil
		},
		degraded: func() Record {
			return Record{Keywords: &Keywords{Keywords: []string{}}}
		},
	}
}

// NewTopics builds the topic stage: the five main topics the document covers.
func NewTopics(completer llm.Completer, logger *slog.Logger) *Stage {
	type response struct {
		Topics []string `json:"topics"`
	}

	return &Stage{
		name:      "topics",
		system:    "You are an expert at identifying the key topics of documents.",
		completer: completer,
		logger:    ensureLogger(logger),
		prompt: func(doc source.Document) string {
			return fmt.Sprintf(
				"Analyze the following text and extract the 5 main topics it covers. "+
					"Topics must be specific and relevant to the document's context.\n"+
					"Return a JSON object with this exact structure:\n"+
					"{\n"+
					"  \"topics\": [\"TOPIC 1\", \"TOPIC 2\", \"TOPIC 3\", \"TOPIC 4\", \"TOPIC 5\"]\n"+
					"}\n\n"+
					"Text to analyze:\n%s",
				excerpt(doc.Text),
			)
		},
		parse: func(content string) (Record, error) {
			res, err := formatting.Parse[response](content)
			if err != nil {
				return Record{}, err
			}
			return Record{Topics: &Topics{Topics: emptyIfNil(res.Topics)}}, nil
		},
		degraded: func() Record {
			return Record{Topics: &Topics{Topics: []string{}}}
		},
	}
}

// NewStructure builds the structure stage: the document's hierarchical
// section outline.
func NewStructure(completer llm.Completer, logger *slog.Logger) *Stage {
	type response struct {
		Structure []Section `json:"structure"`
	}

	return &Stage{
		name:      "structure",
		system:    "You are an expert at analyzing document structure.",
		completer: completer,
		logger:    ensureLogger(logger),
		prompt: func(doc source.Document) string {
			return fmt.Sprintf(
				"Analyze the following text and extract its hierarchical structure. "+
					"Identify the main sections and their subsections.\n"+
					"Return a JSON object with this exact structure:\n"+
					"{\n"+
					"  \"structure\": [\n"+
					"    {\"section_title\": \"SECTION NAME\", \"subsections\": [\"SUBSECTION 1\", ...]}\n"+
					"  ]\n"+
					"}\n\n"+
					"Text to analyze:\n%s",
				excerpt(doc.Text),
			)
		},
		parse: func(content string) (Record, error) {
			res, err := formatting.Parse[response](content)
			if err != nil {
				return Record{}, err
			}
			sections := res.Structure
			if sections == nil {
				sections = []Section{}
			}
			return Record{Structure: &Structure{Sections: sections}}, nil
		},
		degraded: func() Record {
			return Record{Structure: &Structure{Sections: []Section{}}}
		},
	}
}

// NewInsights builds the insight stage: five key observations about
// obligations, rights, deadlines, or important conditions.
func NewInsights(completer llm.Completer, logger *slog.Logger) *Stage {
	type response struct {
		Insights []string `json:"insights"`
	}

	return &Stage{
		name:      "insights",
		system:    "You are an expert document analyst.",
		completer: completer,
		logger:    ensureLogger(logger),
		prompt: func(doc source.Document) string {
			return fmt.Sprintf(
				"Analyze the following text and extract 5 relevant insights or observations. "+
					"Insights must be key points about obligations, rights, deadlines, or important conditions.\n"+
					"Return a JSON object with this exact structure:\n"+
					"{\n"+
					"  \"insights\": [\"INSIGHT 1\", \"INSIGHT 2\", \"INSIGHT 3\", \"INSIGHT 4\", \"INSIGHT 5\"]\n"+
					"}\n\n"+
					"Text to analyze:\n%s",
				excerpt(doc.Text),
			)
		},
		parse: func(content string) (Record, error) {
			res, err := formatting.Parse[response](content)
			if err != nil {
				return Record{}, err
			}
			return Record{Insights: &Insights{Insights: emptyIfNil(res.Insights)}}, nil
		},
		degraded: func() Record {
			return Record{Insights: &Insights{Insights: []string{}}}
		},
	}
}

// emptyIfNil normalizes a missing JSON array to an empty slice so degraded
// and empty results are indistinguishable downstream.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
