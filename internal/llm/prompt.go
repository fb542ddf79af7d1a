package llm

import (
	"fmt"
	"strings"
)

// levelRubric returns writing constraints for a CEFR level. The chapter
// writer leans on these to keep the prose readable at the target level.
func levelRubric(level string) string {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "A1":
		return "Use only the most common everyday words. Short sentences of 5-8 words. Present tense only. No idioms, no subordinate clauses."
	case "A2":
		return "Use high-frequency vocabulary. Short sentences. Present and simple past tense. Basic connectors (and, but, because). No idioms."
	case "B1":
		return "Use everyday vocabulary with occasional less common words. Moderate sentence length. Common tenses and simple subordinate clauses."
	case "B2":
		return "Use a broad vocabulary including some idiomatic expressions. Varied sentence structure and the full range of common tenses."
	case "C1":
		return "Use rich, precise vocabulary and idiomatic expressions. Complex sentence structures are fine. Keep the register consistent."
	case "C2":
		return "Write with native-level range: nuanced idiom, varied rhythm, full stylistic freedom."
	default:
		return "Use clear, natural prose appropriate for an intermediate learner."
	}
}

// BuildOutlineSystemPrompt composes the planner's system message.
func BuildOutlineSystemPrompt(req StoryRequest, chapters int) string {
	parts := []string{
		"You are a story planner for a language-learning app.",
		"Return ONLY JSON that matches the provided JSON Schema.",
		fmt.Sprintf("Plan a story in %s for a learner at CEFR level %s.", languageName(req.Language), req.Level),
		fmt.Sprintf("The story has exactly %d chapters.", chapters),
		"Every chapter summary is one or two sentences, written in English, describing what happens.",
		"Chapter titles are written in the story's language.",
		"The story title is written in the story's language.",
		"Keep the arc simple and satisfying: setup, complication, resolution.",
	}
	return strings.Join(parts, " ")
}

// BuildOutlineUserPrompt packages the user's idea and genre.
func BuildOutlineUserPrompt(req StoryRequest) string {
	var b strings.Builder
	b.WriteString("Genre: ")
	b.WriteString(req.Genre)
	b.WriteString("\nStory idea:\n")
	b.WriteString(req.Prompt)
	return b.String()
}

// BuildChapterSystemPrompt composes the chapter writer's system message.
func BuildChapterSystemPrompt(req ChapterRequest) string {
	parts := []string{
		"You are a fiction writer for a language-learning app.",
		"Return ONLY JSON that matches the provided JSON Schema.",
		fmt.Sprintf("Write chapter %d of the story %q in %s.", req.Number, req.StoryTitle, languageName(req.Story.Language)),
		fmt.Sprintf("Target reading level: CEFR %s. %s", req.Story.Level, levelRubric(req.Story.Level)),
		"Write 150-300 words of continuous prose. No headings, no chapter numbers inside the text.",
		"Stay inside the chapter summary; do not resolve later chapters early.",
	}
	return strings.Join(parts, " ")
}

// BuildChapterUserPrompt packages the chapter plan.
func BuildChapterUserPrompt(req ChapterRequest) string {
	var b strings.Builder
	b.WriteString("Genre: ")
	b.WriteString(req.Story.Genre)
	b.WriteString("\nChapter title: ")
	b.WriteString(req.Outline.Title)
	b.WriteString("\nChapter summary:\n")
	b.WriteString(req.Outline.Summary)
	return b.String()
}

// languageName expands an ISO code for prompt readability; unknown codes
// pass through unchanged.
func languageName(code string) string {
	names := map[string]string{
		"en": "English",
		"es": "Spanish",
		"fr": "French",
		"de": "German",
		"it": "Italian",
		"pt": "Portuguese",
		"nl": "Dutch",
		"pl": "Polish",
		"ru": "Russian",
		"ja": "Japanese",
		"zh": "Chinese",
	}
	if name, ok := names[strings.ToLower(code)]; ok {
		return name
	}
	return code
}
