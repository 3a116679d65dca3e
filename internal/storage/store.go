package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pders01/panels/internal/comic"
)

var (
	favoritesBucket = []byte("favorites")
	imagesBucket    = []byte("images")
)

// ErrNotFound is returned when a favorite or its image is not stored.
var ErrNotFound = errors.New("not found")

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithTimeout(dbPath, time.Second)
}

// NewStoreWithTimeout opens dbPath, waiting up to timeout for the file lock.
func NewStoreWithTimeout(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{favoritesBucket, imagesBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func key(num int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(num))
	return k
}

// SaveFavorite stores c as a favorite. A non-empty image replaces the
// stored image bytes; an empty one keeps whatever was stored before.
func (s *Store) SaveFavorite(c comic.Comic, image []byte) error {
	if c.Num < 1 {
		return fmt.Errorf("saving favorite: invalid comic number %d", c.Num)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return s.saveFavorite(tx, c, image)
	})
}

func (s *Store) saveFavorite(tx *bolt.Tx, c comic.Comic, image []byte) error {
	images := tx.Bucket(imagesBucket)
	if len(image) > 0 {
		if err := images.Put(key(c.Num), image); err != nil {
			return err
		}
	}

	fav := Favorite{
		Comic:    c,
		SavedAt:  s.now().UTC(),
		HasImage: images.Get(key(c.Num)) != nil,
	}
	data, err := json.Marshal(fav)
	if err != nil {
		return err
	}
	return tx.Bucket(favoritesBucket).Put(key(c.Num), data)
}

// DeleteFavorite removes the favorite and its image. Deleting a comic that
// is not a favorite is not an error.
func (s *Store) DeleteFavorite(num int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return deleteFavorite(tx, num)
	})
}

func deleteFavorite(tx *bolt.Tx, num int) error {
	if err := tx.Bucket(favoritesBucket).Delete(key(num)); err != nil {
		return err
	}
	return tx.Bucket(imagesBucket).Delete(key(num))
}

func (s *Store) IsFavorite(num int) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(favoritesBucket).Get(key(num)) != nil
		return nil
	})
	return found, err
}

// ToggleFavorite saves c if it is not a favorite yet and removes it
// otherwise. It reports whether c is a favorite afterwards.
func (s *Store) ToggleFavorite(c comic.Comic, image []byte) (bool, error) {
	var saved bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(favoritesBucket).Get(key(c.Num)) != nil {
			return deleteFavorite(tx, c.Num)
		}
		saved = true
		return s.saveFavorite(tx, c, image)
	})
	if err != nil {
		return false, fmt.Errorf("toggling favorite #%d: %w", c.Num, err)
	}
	return saved, nil
}

func (s *Store) GetFavorite(num int) (*Favorite, error) {
	var fav Favorite
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(favoritesBucket).Get(key(num))
		if data == nil {
			return fmt.Errorf("favorite #%d: %w", num, ErrNotFound)
		}
		return json.Unmarshal(data, &fav)
	})
	if err != nil {
		return nil, err
	}
	return &fav, nil
}

// GetFavorites returns all favorites, most recently saved first.
func (s *Store) GetFavorites() ([]*Favorite, error) {
	var favs []*Favorite
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(favoritesBucket).ForEach(func(_ []byte, v []byte) error {
			var fav Favorite
			if err := json.Unmarshal(v, &fav); err != nil {
				return nil
			}
			favs = append(favs, &fav)
			return nil
		})
	})
	sort.SliceStable(favs, func(i, j int) bool {
		if favs[i].SavedAt.Equal(favs[j].SavedAt) {
			return favs[i].Num() > favs[j].Num()
		}
		return favs[i].SavedAt.After(favs[j].SavedAt)
	})
	return favs, err
}

// GetImage returns the stored image bytes of a favorite.
func (s *Store) GetImage(num int) ([]byte, error) {
	var img []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(imagesBucket).Get(key(num))
		if data == nil {
			return fmt.Errorf("image #%d: %w", num, ErrNotFound)
		}
		img = append([]byte(nil), data...)
		return nil
	})
	return img, err
}
