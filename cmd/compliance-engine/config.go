// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/compliance-engine/internal/secrets"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// setDefaults registers every configuration key so that environment
// variables such as COMPLIANCE_ENGINE_STORE_BACKEND reach Unmarshal.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()

	v.SetDefault("analysis.max_length", d.Analysis.MaxLength)
	v.SetDefault("analysis.section_size", d.Analysis.SectionSize)
	v.SetDefault("analysis.max_sections", d.Analysis.MaxSections)
	v.SetDefault("analysis.max_section_size", d.Analysis.MaxSectionSize)
	v.SetDefault("analysis.context_size", d.Analysis.ContextSize)
	v.SetDefault("analysis.max_findings", d.Analysis.MaxFindings)
	v.SetDefault("analysis.match_threshold", d.Analysis.MatchThreshold)
	v.SetDefault("analysis.problematic_confidence", d.Analysis.ProblematicConfidence)
	v.SetDefault("analysis.preview_length", d.Analysis.PreviewLength)
	v.SetDefault("analysis.classifier_timeout", d.Analysis.ClassifierTimeout)
	v.SetDefault("analysis.concurrency", d.Analysis.Concurrency)

	v.SetDefault("classifier.timeout", d.Classifier.Timeout)
	v.SetDefault("classifier.user_agent", d.Classifier.UserAgent)
	v.SetDefault("classifier.backend", string(d.Classifier.Backend))
	v.SetDefault("classifier.endpoint", d.Classifier.Endpoint)
	v.SetDefault("classifier.api_key", "")
	v.SetDefault("classifier.max_retries", d.Classifier.MaxRetries)

	v.SetDefault("enrichment.mode", string(d.Enrichment.Mode))
	v.SetDefault("enrichment.candidate_threshold", d.Enrichment.CandidateThreshold)
	v.SetDefault("enrichment.fusion_threshold", d.Enrichment.FusionThreshold)
	v.SetDefault("enrichment.fusion_prefix", d.Enrichment.FusionPrefix)
	v.SetDefault("enrichment.validator", d.Enrichment.Validator)
	v.SetDefault("enrichment.model", d.Enrichment.Model)
	v.SetDefault("enrichment.api_key", "")
	v.SetDefault("enrichment.failure_threshold", d.Enrichment.FailureThreshold)
	v.SetDefault("enrichment.cooldown", d.Enrichment.Cooldown)
	v.SetDefault("enrichment.validation_timeout", d.Enrichment.ValidationTimeout)

	v.SetDefault("store.backend", string(d.Store.Backend))
	v.SetDefault("store.sqlite_path", d.Store.SQLitePath)
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.local_dir", d.Store.LocalDir)
	v.SetDefault("store.max_results", d.Store.MaxResults)

	v.SetDefault("upload.type", string(d.Upload.Type))
	v.SetDefault("upload.local_path", d.Upload.LocalPath)
	v.SetDefault("upload.s3_bucket", "")
	v.SetDefault("upload.s3_region", d.Upload.S3Region)
	v.SetDefault("upload.aws_access_key", "")
	v.SetDefault("upload.aws_secret_key", "")
	v.SetDefault("upload.max_file_size", d.Upload.MaxFileSize)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.workers", d.Server.Workers)
	v.SetDefault("server.max_batch", d.Server.MaxBatch)
	v.SetDefault("server.max_bulk_delete", d.Server.MaxBulkDelete)

	v.SetDefault("catalog_path", "")
}

// loadConfig decodes the merged configuration and fills missing
// credentials from secret files.
func loadConfig(v *viper.Viper, s map[string]string) (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	secrets.Apply(&cfg, s)
	return cfg, nil
}
