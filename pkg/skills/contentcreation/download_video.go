// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

// Package contentcreation holds the content creation skill family: video
// acquisition, transcription and caption generation. Skills validate,
// delegate to collaborators and score their own confidence; the heavy
// lifting lives behind the collaborator interfaces.
package contentcreation

import (
	"context"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/confidence"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/schema"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skill"
)

// DownloadedVideo is the collaborator's download result.
type DownloadedVideo struct {
	FilePath string
	Metadata map[string]any
}

// VideoDownloader acquires source video from a platform.
type VideoDownloader interface {
	Download(ctx context.Context, sourceURL, platform, quality string) (DownloadedVideo, error)
}

// DownloadVideo acquires source material for the content pipeline.
type DownloadVideo struct {
	skill.Base
	downloader VideoDownloader
}

// NewDownloadVideo creates the download skill over the given collaborator.
func NewDownloadVideo(downloader VideoDownloader) *DownloadVideo {
	return &DownloadVideo{
		Base:       skill.NewBase(skill.CategoryContentCreation),
		downloader: downloader,
	}
}

func (s *DownloadVideo) Descriptor() skill.Descriptor {
	return skill.Descriptor{
		ID:       "skill_download_video",
		Name:     "Download Video",
		Category: skill.CategoryContentCreation,
		Version:  "1.0.0",
	}
}

func (s *DownloadVideo) InputSchema() *schema.Schema {
	return schema.NewObject().
		Property("source_url", schema.NewString().WithFormat(schema.FormatURI)).
		Property("platform", schema.NewEnum("youtube", "tiktok", "instagram", "twitter")).
		Property("quality_preference", schema.NewEnum("480p", "720p", "1080p", "4k")).
		Require("source_url", "platform")
}

func (s *DownloadVideo) OutputSchema() *schema.Schema {
	return schema.NewObject().
		Property("video_file_path", schema.NewString()).
		Property("metadata", schema.NewObject().
			Property("title", schema.NewString()).
			Property("duration_seconds", schema.NewNumber()).
			Property("resolution", schema.NewString())).
		Property("confidence_score", skill.ConfidenceScoreSchema()).
		Require("video_file_path", "confidence_score")
}

func (s *DownloadVideo) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	if err := skill.ValidateInput(s, input); err != nil {
		return nil, err
	}

	sourceURL, _ := input["source_url"].(string)
	platform, _ := input["platform"].(string)
	quality, _ := input["quality_preference"].(string)
	if quality == "" {
		quality = "1080p"
	}

	video, err := s.downloader.Download(ctx, sourceURL, platform, quality)
	if err != nil {
		return nil, errors.Classify(err).
			WithContext("source_url", sourceURL).
			WithContext("platform", platform)
	}
	if video.FilePath == "" {
		return nil, errors.New(errors.ExternalAPIFailure, "downloader returned no file", nil).
			WithContext("source_url", sourceURL)
	}

	completeness := 1.0
	if len(video.Metadata) == 0 {
		completeness = 0.6
	}
	score := s.Confidence(map[string]float64{
		confidence.MetricDataQuality:        1,
		confidence.MetricProcessingSuccess:  1,
		confidence.MetricOutputCompleteness: completeness,
	})

	metadata := video.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return map[string]any{
		"video_file_path":  video.FilePath,
		"metadata":         metadata,
		"confidence_score": score,
	}, nil
}
