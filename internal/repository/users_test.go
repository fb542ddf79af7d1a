package repository

import (
	"context"
	"testing"
)

// TestGetOrCreate verifies the first call creates the row and later
// calls return it unchanged.
func TestGetOrCreate(t *testing.T) {
	client := newTestClient(t)
	repo := NewUserRepository(client, testLogger)
	ctx := context.Background()

	name := "Lena"
	created, err := repo.GetOrCreate(ctx, "fb-uid-1", "lena@example.com", &name)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if created.FirebaseUID != "fb-uid-1" || created.Email != "lena@example.com" {
		t.Errorf("unexpected user: uid=%q email=%q", created.FirebaseUID, created.Email)
	}
	if created.DisplayName == nil || *created.DisplayName != "Lena" {
		t.Errorf("display name not stored: %v", created.DisplayName)
	}

	again, err := repo.GetOrCreate(ctx, "fb-uid-1", "lena@example.com", nil)
	if err != nil {
		t.Fatalf("GetOrCreate second call: %v", err)
	}
	if again.ID != created.ID {
		t.Errorf("second call created a new row: %s != %s", again.ID, created.ID)
	}

	count, err := client.User.Query().Count(ctx)
	if err != nil {
		t.Fatalf("counting users: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 user row, got %d", count)
	}
}

// TestUpdateDisplayName covers both setting and clearing the name.
func TestUpdateDisplayName(t *testing.T) {
	client := newTestClient(t)
	repo := NewUserRepository(client, testLogger)
	ctx := context.Background()
	u := createTestUser(t, client)

	name := "Reader One"
	updated, err := repo.UpdateDisplayName(ctx, u.ID, &name)
	if err != nil {
		t.Fatalf("UpdateDisplayName: %v", err)
	}
	if updated.DisplayName == nil || *updated.DisplayName != "Reader One" {
		t.Errorf("display name not set: %v", updated.DisplayName)
	}

	updated, err = repo.UpdateDisplayName(ctx, u.ID, nil)
	if err != nil {
		t.Fatalf("UpdateDisplayName clear: %v", err)
	}
	if updated.DisplayName != nil {
		t.Errorf("display name not cleared: %q", *updated.DisplayName)
	}
}

// TestUserStats seeds a small library and checks every aggregate.
func TestUserStats(t *testing.T) {
	client := newTestClient(t)
	users := NewUserRepository(client, testLogger)
	books := NewBookRepository(client, testLogger)
	vocab := NewVocabularyRepository(client, testLogger)
	ctx := context.Background()
	u := createTestUser(t, client)

	es, err := books.CreateFromStory(ctx, &CreateBookRequest{
		UserID: u.ID, JobID: "story_aaaa0001", Title: "La Casa",
		LanguageCode: "es", Level: "A2", Genre: "mystery",
		Content: []string{"cap 1"}, TotalChapters: 1,
	})
	if err != nil {
		t.Fatalf("seeding book: %v", err)
	}
	if _, err := books.CreateFromStory(ctx, &CreateBookRequest{
		UserID: u.ID, JobID: "story_aaaa0002", Title: "Le Jardin",
		LanguageCode: "fr", Level: "B1", Genre: "romance",
		Content: []string{"ch 1"}, TotalChapters: 1,
	}); err != nil {
		t.Fatalf("seeding book: %v", err)
	}
	if err := books.SetFavorite(ctx, u.ID, es.ID, true); err != nil {
		t.Fatalf("seeding favorite: %v", err)
	}
	for _, w := range []string{"casa", "puerta", "ventana"} {
		if _, err := vocab.SaveWord(ctx, &SaveWordRequest{
			UserID: u.ID, BookID: es.ID, LanguageCode: "es",
			Word: w, Translation: "x",
		}); err != nil {
			t.Fatalf("seeding word %q: %v", w, err)
		}
	}

	stats, err := users.Stats(ctx, u.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalBooks != 2 {
		t.Errorf("TotalBooks = %d, want 2", stats.TotalBooks)
	}
	if stats.FavoriteBooks != 1 {
		t.Errorf("FavoriteBooks = %d, want 1", stats.FavoriteBooks)
	}
	if stats.TotalWordsLearned != 3 {
		t.Errorf("TotalWordsLearned = %d, want 3", stats.TotalWordsLearned)
	}
	if len(stats.LanguagesLearning) != 2 || stats.LanguagesLearning[0] != "es" || stats.LanguagesLearning[1] != "fr" {
		t.Errorf("LanguagesLearning = %v, want [es fr]", stats.LanguagesLearning)
	}
}

// TestDeleteAccount verifies the cascade takes books, library rows,
// vocabulary and jobs with the user.
func TestDeleteAccount(t *testing.T) {
	client := newTestClient(t)
	users := NewUserRepository(client, testLogger)
	books := NewBookRepository(client, testLogger)
	vocab := NewVocabularyRepository(client, testLogger)
	jobs := NewGenerationJobRepository(client, testLogger)
	ctx := context.Background()
	u := createTestUser(t, client)

	b, err := books.CreateFromStory(ctx, &CreateBookRequest{
		UserID: u.ID, JobID: "story_bbbb0001", Title: "Der Wald",
		LanguageCode: "de", Level: "A1", Genre: "adventure",
		Content: []string{"kap 1"}, TotalChapters: 1,
	})
	if err != nil {
		t.Fatalf("seeding book: %v", err)
	}
	if _, err := vocab.SaveWord(ctx, &SaveWordRequest{
		UserID: u.ID, BookID: b.ID, LanguageCode: "de",
		Word: "wald", Translation: "forest",
	}); err != nil {
		t.Fatalf("seeding word: %v", err)
	}
	if _, err := jobs.Create(ctx, &CreateJobRequest{
		JobID: "story_bbbb0002", UserID: &u.ID, LanguageCode: "de",
		Level: "A1", Genre: "adventure", Prompt: "a walk in the woods",
	}); err != nil {
		t.Fatalf("seeding job: %v", err)
	}

	if err := users.DeleteAccount(ctx, u.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	for name, count := range map[string]func() (int, error){
		"users":      func() (int, error) { return client.User.Query().Count(ctx) },
		"books":      func() (int, error) { return client.Book.Query().Count(ctx) },
		"user_books": func() (int, error) { return client.UserBook.Query().Count(ctx) },
		"vocabulary": func() (int, error) { return client.Vocabulary.Query().Count(ctx) },
		"jobs":       func() (int, error) { return client.GenerationJob.Query().Count(ctx) },
	} {
		n, err := count()
		if err != nil {
			t.Fatalf("counting %s: %v", name, err)
		}
		if n != 0 {
			t.Errorf("%s not emptied: %d rows left", name, n)
		}
	}
}
