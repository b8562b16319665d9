package exam

import (
	"context"
	"math/rand"
)

// Selector assembles the question set for a new attempt. Each tier
// draws from a shrinking remainder; eligibility loosens tier by tier so
// the quota is met whenever the bank can possibly supply it. If every
// tier runs dry the selector returns a short set rather than failing.
type Selector struct {
	sampler Sampler
}

func NewSelector(sampler Sampler) *Selector { return &Selector{sampler: sampler} }

// SelectNormal builds the set for a standard exam, steering toward the
// user's weak categories and away from questions they already missed.
func (s *Selector) SelectNormal(ctx context.Context, tpl Template, weakCategories, excludedIDs []int64) ([]Question, error) {
	required := tpl.RequiredCount()
	var chosen []Question

	// Tier 1: per-type quotas from the weak categories only.
	if len(weakCategories) > 0 {
		single, err := s.sampler.Sample(ctx, SampleFilter{
			Type:        TypeSingle,
			CategoryIDs: weakCategories,
			ExcludeIDs:  excludedIDs,
		}, tpl.SingleChoiceCount)
		if err != nil {
			return nil, err
		}
		multiple, err := s.sampler.Sample(ctx, SampleFilter{
			Type:        TypeMultiple,
			CategoryIDs: weakCategories,
			ExcludeIDs:  excludedIDs,
		}, tpl.MultipleChoiceCount)
		if err != nil {
			return nil, err
		}
		chosen = append(chosen, single...)
		chosen = append(chosen, multiple...)
	}

	// Tier 2: any category, any type, still avoiding missed questions.
	if len(chosen) < required {
		more, err := s.sampler.Sample(ctx, SampleFilter{
			ExcludeIDs: append(questionIDs(chosen), excludedIDs...),
		}, required-len(chosen))
		if err != nil {
			return nil, err
		}
		chosen = append(chosen, more...)
	}

	// Tier 3: drop the missed-question exclusion entirely.
	if len(chosen) < required {
		more, err := s.sampler.Sample(ctx, SampleFilter{
			ExcludeIDs: questionIDs(chosen),
		}, required-len(chosen))
		if err != nil {
			return nil, err
		}
		chosen = append(chosen, more...)
	}

	return truncate(dedupe(chosen), required), nil
}

// SelectTargeted builds the set for a special or makeup exam from the
// template's target categories (or the whole bank when none are set).
func (s *Selector) SelectTargeted(ctx context.Context, tpl Template) ([]Question, error) {
	required := tpl.RequiredCount()

	// Over-draw so the type partition below has room to work with.
	candidates, err := s.sampler.Sample(ctx, SampleFilter{
		CategoryIDs: tpl.TargetCategoryIDs,
	}, 2*required)
	if err != nil {
		return nil, err
	}

	if len(candidates) < required {
		more, err := s.sampler.Sample(ctx, SampleFilter{
			NotCategoryIDs: tpl.TargetCategoryIDs,
			ExcludeIDs:     questionIDs(candidates),
		}, required-len(candidates))
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, more...)
	}
	candidates = dedupe(candidates)

	var single, multiple []Question
	for _, q := range candidates {
		switch q.Type {
		case TypeSingle:
			single = append(single, q)
		case TypeMultiple:
			multiple = append(multiple, q)
		}
	}
	final := append(truncate(single, tpl.SingleChoiceCount), truncate(multiple, tpl.MultipleChoiceCount)...)

	// One type under-supplied: backfill from the unchosen remainder of
	// the candidate pool regardless of type.
	if len(final) < required {
		used := map[int64]struct{}{}
		for _, q := range final {
			used[q.ID] = struct{}{}
		}
		var rest []Question
		for _, q := range candidates {
			if _, ok := used[q.ID]; !ok {
				rest = append(rest, q)
			}
		}
		rand.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
		final = append(final, truncate(rest, required-len(final))...)
	}

	return truncate(final, required), nil
}

func questionIDs(qs []Question) []int64 {
	ids := make([]int64, 0, len(qs))
	for _, q := range qs {
		ids = append(ids, q.ID)
	}
	return ids
}

func dedupe(qs []Question) []Question {
	seen := map[int64]struct{}{}
	out := qs[:0]
	for _, q := range qs {
		if _, ok := seen[q.ID]; ok {
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
	}
	return out
}

func truncate(qs []Question, n int) []Question {
	if len(qs) > n {
		return qs[:n]
	}
	return qs
}
