// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment splits document text into fixed-size sections and applies
// the head+tail truncation policy. All lengths are measured in runes.
package segment

import (
	"iter"
	"slices"
)

// Head and tail shares of MaxLength kept by Truncate.
const (
	headShare = 0.6
	tailShare = 0.4
)

// Chunks yields contiguous, non-overlapping chunks of size runes. Only the
// final chunk may be shorter. Empty text yields nothing. The sequence can be
// ranged over any number of times. A non-positive size yields the whole
// text as a single chunk.
func Chunks(text string, size int) iter.Seq[string] {
	return func(yield func(string) bool) {
		runes := []rune(text)
		if len(runes) == 0 {
			return
		}
		if size <= 0 {
			yield(text)
			return
		}
		for start := 0; start < len(runes); start += size {
			end := min(start+size, len(runes))
			if !yield(string(runes[start:end])) {
				return
			}
		}
	}
}

// Segment returns all chunks of text as a slice.
func Segment(text string, size int) []string {
	return slices.Collect(Chunks(text, size))
}

// Truncate applies the head+tail policy. When text exceeds maxLength runes
// the result is the first floor(0.6*maxLength) runes followed by the last
// floor(0.4*maxLength) runes, so trailing clauses survive. Otherwise text is
// returned unchanged.
func Truncate(text string, maxLength int) (string, bool) {
	runes := []rune(text)
	if maxLength <= 0 || len(runes) <= maxLength {
		return text, false
	}
	head, tail := Split(maxLength)
	out := make([]rune, 0, head+tail)
	out = append(out, runes[:head]...)
	out = append(out, runes[len(runes)-tail:]...)
	return string(out), true
}

// Split returns the head and tail rune counts Truncate keeps for maxLength.
func Split(maxLength int) (head, tail int) {
	return int(float64(maxLength) * headShare), int(float64(maxLength) * tailShare)
}

// Plan describes how a document is cut into classified sections.
type Plan struct {
	// Size is the section size after adaptive enlargement.
	Size int
	// Bound is the number of leading runes covered by the sections.
	Bound int
}

// PlanSections computes the section size for a document of length runes.
// When the document is longer than sectionSize*maxSections the size grows to
// ceil(length/maxSections), capped at maxSectionSize, so the sections cover
// proportionally more of the document.
func PlanSections(length, sectionSize, maxSections, maxSectionSize int) Plan {
	if sectionSize <= 0 {
		sectionSize = 1
	}
	if maxSections <= 0 {
		maxSections = 1
	}
	size := sectionSize
	if length > sectionSize*maxSections {
		size = (length + maxSections - 1) / maxSections
		if maxSectionSize > 0 && size > maxSectionSize {
			size = maxSectionSize
		}
		if size < sectionSize {
			size = sectionSize
		}
	}
	return Plan{Size: size, Bound: min(length, size*maxSections)}
}

// Sections applies PlanSections to text and returns the bounded chunks.
func Sections(text string, sectionSize, maxSections, maxSectionSize int) []string {
	runes := []rune(text)
	plan := PlanSections(len(runes), sectionSize, maxSections, maxSectionSize)
	return Segment(string(runes[:plan.Bound]), plan.Size)
}
