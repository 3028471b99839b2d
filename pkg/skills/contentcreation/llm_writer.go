// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package contentcreation

import (
	"context"
	"fmt"
	"strings"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/llm"
)

// LLMCaptionWriter generates captions through a chat model. It implements
// CaptionWriter.
type LLMCaptionWriter struct {
	provider    llm.Provider
	model       string
	temperature float64
}

// NewLLMCaptionWriter creates a writer over the provider using the given
// model.
func NewLLMCaptionWriter(provider llm.Provider, model string) *LLMCaptionWriter {
	return &LLMCaptionWriter{
		provider:    provider,
		model:       model,
		temperature: 0.8,
	}
}

const captionSystemPrompt = `You write social media captions in the voice of a specific persona.
Write 3 caption variants for the requested content, one per line.
After the captions, write a single final line containing only hashtags.
Do not number the lines or add any other commentary.`

// GenerateCaption asks the model for caption variants and parses them out of
// the response. Lines consisting only of hashtags become the hashtag set.
func (w *LLMCaptionWriter) GenerateCaption(ctx context.Context, req CaptionRequest) (CaptionResult, error) {
	prompt := fmt.Sprintf("Persona %s, tone %q, platform %q.\nTopic: %s",
		req.PersonaID, req.Tone, req.Platform, req.ContentTopic)
	if req.ContentNotes != "" {
		prompt += "\nNotes: " + req.ContentNotes
	}

	resp, err := w.provider.Chat(ctx, llm.ChatRequest{
		Model:       w.model,
		Temperature: w.temperature,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: captionSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		return CaptionResult{}, errors.New(errors.ExternalAPIFailure, "caption generation failed", err).
			WithContext("model", w.model)
	}

	result := parseCaptionResponse(resp.Content)
	if len(result.Variants) == 0 {
		return CaptionResult{}, errors.New(errors.ExternalAPIFailure, "model returned no usable captions", nil).
			WithContext("model", w.model)
	}
	return result, nil
}

func parseCaptionResponse(content string) CaptionResult {
	var result CaptionResult
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isHashtagLine(line) {
			result.Hashtags = append(result.Hashtags, strings.Fields(line)...)
			continue
		}
		result.Variants = append(result.Variants, line)
	}
	return result
}

func isHashtagLine(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if !strings.HasPrefix(f, "#") {
			return false
		}
	}
	return true
}
