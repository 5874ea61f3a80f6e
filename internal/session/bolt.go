package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"golang.org/x/oauth2"
)

var (
	bucketName = []byte("session")
	tokenKey   = []byte("token")
)

// BoltStore keeps the token in a local bolt database file.
type BoltStore struct {
	db *bolt.DB
}

func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// Close releases the file lock.
func (b *BoltStore) Close() error {
	return b.db.Close()
}

func (b *BoltStore) Load() (*oauth2.Token, error) {
	var token *oauth2.Token
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return nil
		}
		raw := bucket.Get(tokenKey)
		if raw == nil {
			return nil
		}
		token = &oauth2.Token{}
		return json.Unmarshal(raw, token)
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (b *BoltStore) Save(token *oauth2.Token) error {
	raw, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		return bucket.Put(tokenKey, raw)
	})
}

func (b *BoltStore) Delete() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return nil
		}
		return bucket.Delete(tokenKey)
	})
}
