package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storylingo/storylingo/internal/llm"
)

// GenerateOutline implements llm.StoryGenerator using chat/completions
// with a JSON-object response constrained by the outline schema.
func (c *Client) GenerateOutline(ctx context.Context, req llm.StoryRequest) (llm.StoryOutline, error) {
	rid := uuid.New().String()
	start := time.Now()
	chapters := 10

	c.logger.Info("llm.outline.start",
		"req_id", rid,
		"job_id", req.JobID,
		"model", c.cfg.Model,
		"language", req.Language,
		"level", req.Level,
		"genre", req.Genre,
		"prompt_len", len(req.Prompt),
	)

	schema := llm.BuildOutlineJSONSchema(chapters)
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildOutlineSystemPrompt(req, chapters)},
			{"role": "user", "content": llm.BuildOutlineUserPrompt(req) + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	raw, err := c.post(ctx, body)
	if err != nil {
		c.logger.Error("llm.outline.http_error",
			"req_id", rid, "job_id", req.JobID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.StoryOutline{}, err
	}

	content, err := chatContent(raw)
	if err != nil {
		c.logger.Error("llm.outline.decode_error",
			"req_id", rid, "job_id", req.JobID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.StoryOutline{}, err
	}

	if err := llm.ValidateJSONAgainstSchema(schema, content); err != nil {
		c.logger.Error("llm.outline.schema_validation_failed",
			"req_id", rid, "job_id", req.JobID, "error", err, "content", string(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.StoryOutline{}, fmt.Errorf("schema validation failed: %w", err)
	}

	var out llm.StoryOutline
	if err := json.Unmarshal(content, &out); err != nil {
		return llm.StoryOutline{}, fmt.Errorf("unmarshal outline: %w", err)
	}

	c.logger.Info("llm.outline.ok",
		"req_id", rid,
		"job_id", req.JobID,
		"title", out.Title,
		"chapters", len(out.Chapters),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// GenerateChapter implements llm.StoryGenerator for a single chapter.
func (c *Client) GenerateChapter(ctx context.Context, req llm.ChapterRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.chapter.start",
		"req_id", rid,
		"job_id", req.Story.JobID,
		"chapter", req.Number,
		"model", c.cfg.Model,
		"level", req.Story.Level,
	)

	schema := llm.BuildChapterJSONSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildChapterSystemPrompt(req)},
			{"role": "user", "content": llm.BuildChapterUserPrompt(req) + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	raw, err := c.post(ctx, body)
	if err != nil {
		c.logger.Error("llm.chapter.http_error",
			"req_id", rid, "job_id", req.Story.JobID, "chapter", req.Number, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	content, err := chatContent(raw)
	if err != nil {
		c.logger.Error("llm.chapter.decode_error",
			"req_id", rid, "job_id", req.Story.JobID, "chapter", req.Number, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	if err := llm.ValidateJSONAgainstSchema(schema, content); err != nil {
		c.logger.Error("llm.chapter.schema_validation_failed",
			"req_id", rid, "job_id", req.Story.JobID, "chapter", req.Number, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("schema validation failed: %w", err)
	}

	var out struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(content, &out); err != nil {
		return "", fmt.Errorf("unmarshal chapter: %w", err)
	}

	c.logger.Info("llm.chapter.ok",
		"req_id", rid,
		"job_id", req.Story.JobID,
		"chapter", req.Number,
		"content_len", len(out.Content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out.Content, nil
}

// chatContent pulls the first choice's message content out of a
// chat/completions response.
func chatContent(raw []byte) ([]byte, error) {
	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return nil, fmt.Errorf("no choices in openai response")
	}
	return []byte(strings.TrimSpace(cc.Choices[0].Message.Content)), nil
}

func (c *Client) post(ctx context.Context, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Warn("openai response body close error", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, buf.String())
	}

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	return buf.Bytes(), nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
