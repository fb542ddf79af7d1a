package entity

// Blob artifacts written and read during story generation. JSON keys are
// camelCase; the artifacts are shared with the frontend reader, which
// expects this exact shape.

// RawPrompt is the user's generation request as uploaded at job creation.
type RawPrompt struct {
	UserPrompt   string `json:"userPrompt"`
	Genre        string `json:"genre"`
	ReadingLevel string `json:"readingLevel"`
	Language     string `json:"language"`
	CreatedAt    string `json:"createdAt"`
}

// ChapterOutline is one planned chapter in the manifest.
type ChapterOutline struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Manifest is the outline stage's output: the raw prompt enriched with a
// title and per-chapter plan.
type Manifest struct {
	StoryID      string           `json:"storyId"`
	UserPrompt   string           `json:"userPrompt"`
	Genre        string           `json:"genre"`
	ReadingLevel string           `json:"readingLevel"`
	Language     string           `json:"language"`
	Title        string           `json:"title"`
	Chapters     []ChapterOutline `json:"chapters"`
	Status       string           `json:"status"`
}

// Chunk is one generated chapter, uploaded as chunks/chunk_<n>.json.
type Chunk struct {
	StoryID      string `json:"storyId"`
	ChunkID      int    `json:"chunkId"`
	ChapterTitle string `json:"chapterTitle"`
	Content      string `json:"content"`
	Status       string `json:"status"`
}

// StoryChapter is a chapter in the assembled story.
type StoryChapter struct {
	ChapterNumber int    `json:"chapterNumber"`
	Title         string `json:"title"`
	Content       string `json:"content"`
}

// FinalStory is the assembly stage's output and the payload the status
// endpoint returns once a job completes.
type FinalStory struct {
	StoryID       string         `json:"storyId"`
	Title         string         `json:"title"`
	CoverURL      *string        `json:"coverUrl"`
	Language      string         `json:"language"`
	Genre         string         `json:"genre"`
	ReadingLevel  string         `json:"readingLevel"`
	Chapters      []StoryChapter `json:"chapters"`
	Content       []string       `json:"content"`
	Status        string         `json:"status"`
	TotalChapters int            `json:"totalChapters"`
}
