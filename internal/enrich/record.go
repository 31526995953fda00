// Package enrich implements the per-document metadata enrichment stages: the
// pre-fan-out metadata/deduplication pass and the five parallel
// language-model stages (summary, keywords, topics, structure, insights).
// Each stage contributes exactly one tagged section of a Record, so the
// pipeline's index-aligned union reducer stays race-free when the stages run
// concurrently.
package enrich

import "slices"

// Identity carries the metadata stage's contribution: document provenance,
// size, and the duplicate flag.
type Identity struct {
	Source      string `json:"source,omitempty"`
	Title       string `json:"title"`
	ContentHash string `json:"content_hash"`
	TokenCount  int    `json:"token_count"`
	IsDuplicate bool   `json:"is_duplicate"`
}

// Summary is the summarizer stage's contribution.
type Summary struct {
	Abstract  string   `json:"abstract"`
	KeyPoints []string `json:"key_points"`
	Actions   []string `json:"recommended_actions"`
}

// Keywords is the keyword stage's contribution.
type Keywords struct {
	Keywords []string `json:"keywords"`
}

// Topics is the topic stage's contribution.
type Topics struct {
	Topics []string `json:"topics"`
}

// Section is one entry in a document's hierarchical structure.
type Section struct {
	Title       string   `json:"section_title"`
	Subsections []string `json:"subsections"`
}

// Structure is the structure stage's contribution.
type Structure struct {
	Sections []Section `json:"structure"`
}

// Insights is the insight stage's contribution.
type Insights struct {
	Insights []string `json:"insights"`
}

// Record is the full per-document metadata record aggregated across stages.
// Each pointer field is owned by exactly one stage; nil means that stage has
// not contributed yet. A non-nil contribution with empty contents means the
// stage ran and degraded to an empty result.
type Record struct {
	Identity  *Identity  `json:"identity,omitempty"`
	Summary   *Summary   `json:"summary,omitempty"`
	Keywords  *Keywords  `json:"keywords,omitempty"`
	Topics    *Topics    `json:"topics,omitempty"`
	Structure *Structure `json:"structure,omitempty"`
	Insights  *Insights  `json:"insights,omitempty"`
}

// Merge assigns update's non-nil contributions into r, overwriting any
// contribution already present. Contributions update sets to nil are left
// untouched, so a populated record is never wholesale replaced.
func (r *Record) Merge(update Record) {
	if update.Identity != nil {
		r.Identity = update.Identity
	}
	if update.Summary != nil {
		r.Summary = update.Summary
	}
	if update.Keywords != nil {
		r.Keywords = update.Keywords
	}
	if update.Topics != nil {
		r.Topics = update.Topics
	}
	if update.Structure != nil {
		r.Structure = update.Structure
	}
	if update.Insights != nil {
		r.Insights = update.Insights
	}
}

// Clone returns a deep copy of r, suitable for handing to concurrent readers.
func (r Record) Clone() Record {
	out := Record{}
	if r.Identity != nil {
		identity := *r.Identity
		out.Identity = &identity
	}
	if r.Summary != nil {
		summary := *r.Summary
		summary.KeyPoints = slices.Clone(r.Summary.KeyPoints)
		summary.Actions = slices.Clone(r.Summary.Actions)
		out.Summary = &summary
	}
	if r.Keywords != nil {
		out.Keywords = &Keywords{Keywords: slices.Clone(r.Keywords.Keywords)}
	}
	if r.Topics != nil {
		out.Topics = &Topics{Topics: slices.Clone(r.Topics.Topics)}
	}
	if r.Structure != nil {
		sections := make([]Section, len(r.Structure.Sections))
		for i, s := range r.Structure.Sections {
			sections[i] = Section{
				Title:       s.Title,
				Subsections: slices.Clone(s.Subsections),
			}
		}
		out.Structure = &Structure{Sections: sections}
	}
	if r.Insights != nil {
		out.Insights = &Insights{Insights: slices.Clone(r.Insights.Insights)}
	}
	return out
}
