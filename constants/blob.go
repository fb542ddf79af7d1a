package constants

import "fmt"

// StoriesContainer is the blob container holding all generation artifacts.
const StoriesContainer = "stories"

// ChunksPerStory is the fixed number of chapters every story is generated
// with. Progress reported by the status endpoint is chunks done out of this.
const ChunksPerStory = 10

// Blob layout under Users/<job_id>/. Paths are stable: the worker writes
// them and the book service reads them back.

func PromptBlobPath(jobID string) string {
	return fmt.Sprintf("Users/%s/prompt/raw_%s.json", jobID, jobID)
}

func ManifestBlobPath(jobID string) string {
	return fmt.Sprintf("Users/%s/manifest.json", jobID)
}

// ChunkBlobPath returns the path for chapter n (1-indexed).
func ChunkBlobPath(jobID string, n int) string {
	return fmt.Sprintf("Users/%s/chunks/chunk_%d.json", jobID, n)
}

// ChunksBlobPrefix covers all chunk blobs of one story.
func ChunksBlobPrefix(jobID string) string {
	return fmt.Sprintf("Users/%s/chunks/", jobID)
}

// StoryBlobPrefix covers every artifact of one story.
func StoryBlobPrefix(jobID string) string {
	return fmt.Sprintf("Users/%s/", jobID)
}

func FinalBlobPath(jobID string) string {
	return fmt.Sprintf("Users/%s/final/story_%s.json", jobID, jobID)
}
