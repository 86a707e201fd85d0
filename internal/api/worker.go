// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"time"

	"github.com/pdiddy/compliance-engine/internal/store"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// job is one accepted document waiting for analysis.
type job struct {
	id      string
	text    string
	blobKey string
}

// dispatch analyzes j in the background. At most cfg.Workers analyses run
// at once; the rest wait for a slot.
func (s *Server) dispatch(j job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		select {
		case s.sem <- struct{}{}:
		case <-s.base.Done():
			s.log.Warn().Str("id", j.id).Msg("server shutting down, analysis dropped")
			return
		}
		defer func() { <-s.sem }()

		s.process(j)
	}()
}

func (s *Server) process(j job) {
	log := s.log.With().Str("id", j.id).Logger()

	result := s.analyzer.Analyze(s.base, j.text)
	rec := types.Record{
		ID:        j.id,
		FilePath:  j.blobKey,
		Status:    result.Status,
		Details:   result,
		Content:   j.text,
		CreatedAt: time.Now().UTC(),
	}

	outcome, err := s.records.Save(s.base, rec)
	switch outcome {
	case store.Stored:
		log.Info().Str("status", string(result.Status)).Msg("analysis stored")
	case store.FellBack:
		log.Warn().Str("status", string(result.Status)).Msg("analysis stored in local fallback")
	default:
		log.Error().Err(err).Msg("analysis could not be stored")
	}
}
