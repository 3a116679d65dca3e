package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pders01/panels/internal/comic"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// fixedClock makes SavedAt advance by one minute per save.
func fixedClock(store *Store) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	store.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
}

func testComic(num int, title string) comic.Comic {
	return comic.Comic{
		Num:   num,
		Title: title,
		Img:   "https://imgs.xkcd.com/comics/test.png",
		Alt:   "alt text",
		Day:   "1",
		Month: "4",
		Year:  "2009",
	}
}

func TestStore_SaveAndGetFavorite(t *testing.T) {
	store := setupTestStore(t)

	c := testComic(353, "Python")
	if err := store.SaveFavorite(c, []byte("png-bytes")); err != nil {
		t.Fatalf("failed to save favorite: %v", err)
	}

	fav, err := store.GetFavorite(353)
	if err != nil {
		t.Fatalf("failed to get favorite: %v", err)
	}
	if fav.Comic != c {
		t.Errorf("expected comic %+v, got %+v", c, fav.Comic)
	}
	if !fav.HasImage {
		t.Error("expected favorite to have an image")
	}
	if fav.SavedAt.IsZero() {
		t.Error("expected SavedAt to be set")
	}

	img, err := store.GetImage(353)
	if err != nil {
		t.Fatalf("failed to get image: %v", err)
	}
	if string(img) != "png-bytes" {
		t.Errorf("expected image bytes %q, got %q", "png-bytes", img)
	}
}

func TestStore_SaveFavoriteWithoutImage(t *testing.T) {
	store := setupTestStore(t)

	if err := store.SaveFavorite(testComic(1, "Barrel - Part 1"), nil); err != nil {
		t.Fatal(err)
	}

	fav, err := store.GetFavorite(1)
	if err != nil {
		t.Fatal(err)
	}
	if fav.HasImage {
		t.Error("expected favorite without image")
	}

	_, err = store.GetImage(1)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SaveFavoriteKeepsImage(t *testing.T) {
	store := setupTestStore(t)

	c := testComic(10, "Pi Equals")
	if err := store.SaveFavorite(c, []byte("first")); err != nil {
		t.Fatal(err)
	}
	c.Title = "Pi Equals (updated)"
	if err := store.SaveFavorite(c, nil); err != nil {
		t.Fatal(err)
	}

	fav, err := store.GetFavorite(10)
	if err != nil {
		t.Fatal(err)
	}
	if fav.Comic.Title != "Pi Equals (updated)" {
		t.Errorf("expected updated title, got %q", fav.Comic.Title)
	}
	if !fav.HasImage {
		t.Error("expected image to be kept")
	}
	img, _ := store.GetImage(10)
	if string(img) != "first" {
		t.Errorf("expected kept image, got %q", img)
	}
}

func TestStore_SaveFavoriteInvalidNumber(t *testing.T) {
	store := setupTestStore(t)

	if err := store.SaveFavorite(comic.Comic{Title: "nothing"}, nil); err == nil {
		t.Error("expected error for comic without a number")
	}
}

func TestStore_GetFavorite_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetFavorite(404)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetFavoritesNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	fixedClock(store)

	for _, n := range []int{100, 5, 2000, 42} {
		if err := store.SaveFavorite(testComic(n, "comic"), nil); err != nil {
			t.Fatal(err)
		}
	}

	favs, err := store.GetFavorites()
	if err != nil {
		t.Fatal(err)
	}

	want := []int{42, 2000, 5, 100}
	if len(favs) != len(want) {
		t.Fatalf("expected %d favorites, got %d", len(want), len(favs))
	}
	for i, n := range want {
		if favs[i].Num() != n {
			t.Errorf("favorite %d: expected #%d, got #%d", i, n, favs[i].Num())
		}
	}
}

func TestStore_DeleteFavorite(t *testing.T) {
	store := setupTestStore(t)

	if err := store.SaveFavorite(testComic(7, "Girl Sleeping"), []byte("img")); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteFavorite(7); err != nil {
		t.Fatalf("failed to delete favorite: %v", err)
	}

	ok, err := store.IsFavorite(7)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected favorite to be deleted")
	}
	if _, err := store.GetImage(7); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected image to be deleted, got %v", err)
	}

	if err := store.DeleteFavorite(7); err != nil {
		t.Errorf("deleting a missing favorite should succeed, got %v", err)
	}
}

func TestStore_ToggleFavorite(t *testing.T) {
	store := setupTestStore(t)
	c := testComic(327, "Exploits of a Mom")

	saved, err := store.ToggleFavorite(c, []byte("img"))
	if err != nil {
		t.Fatal(err)
	}
	if !saved {
		t.Error("expected first toggle to save")
	}
	if ok, _ := store.IsFavorite(327); !ok {
		t.Error("expected comic to be a favorite")
	}

	saved, err = store.ToggleFavorite(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	if saved {
		t.Error("expected second toggle to remove")
	}
	if ok, _ := store.IsFavorite(327); ok {
		t.Error("expected comic to no longer be a favorite")
	}
}

func TestStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "persist.db")

	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SaveFavorite(testComic(149, "Sandwich"), []byte("img")); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewStoreWithTimeout(dbPath, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	favs, err := reopened.GetFavorites()
	if err != nil {
		t.Fatal(err)
	}
	if len(favs) != 1 || favs[0].Comic.Title != "Sandwich" {
		t.Errorf("expected persisted favorite, got %+v", favs)
	}
}
