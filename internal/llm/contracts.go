package llm

import "context"

// StoryRequest carries the generation parameters a job was created with.
type StoryRequest struct {
	JobID    string
	Language string // ISO-639-1 code
	Level    string // CEFR level, A1..C2
	Genre    string
	Prompt   string // the user's story idea
}

// ChapterOutline is one planned chapter: a title and a short summary
// for the chapter writer to expand.
type ChapterOutline struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// StoryOutline is the normalized shape we want from the outline call.
type StoryOutline struct {
	Title    string           `json:"title"`
	Chapters []ChapterOutline `json:"chapters"`
}

// ChapterRequest asks for the prose of a single chapter.
type ChapterRequest struct {
	Story      StoryRequest
	StoryTitle string
	Number     int // 1-based chapter index
	Outline    ChapterOutline
}

// StoryGenerator is the interface the pipeline depends on.
type StoryGenerator interface {
	GenerateOutline(ctx context.Context, req StoryRequest) (StoryOutline, error)
	// GenerateChapter returns the chapter prose, written at the
	// request's CEFR level.
	GenerateChapter(ctx context.Context, req ChapterRequest) (string, error)
}
