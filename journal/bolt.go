package journal

import (
	"context"
	"encoding/json"
	"time"

	"go.etcd.io/bbolt"
)

// BoltHibernator keeps records in a local bbolt file
type BoltHibernator struct {
	db *bbolt.DB
}

const boltOpenTimeout = time.Second

var sessionsBucket = []byte("sessions")

// NewBoltHibernator opens (or creates) the bbolt file at path
func NewBoltHibernator(path string) (*BoltHibernator, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{
		Timeout: boltOpenTimeout,
	})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltHibernator{db: db}, nil
}

func (h *BoltHibernator) Get(
	_ context.Context, sessionID string,
) (*HibernateRecord, error) {
	var data []byte
	err := h.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(sessionsBucket).Get([]byte(sessionID))
		if v == nil {
			return ErrHibernateNotFound
		}
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	rec := &HibernateRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (h *BoltHibernator) Put(_ context.Context, rec *HibernateRecord) error {
	if rec.SessionID == "" {
		return ErrSessionIDRequired
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return h.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(rec.SessionID), data)
	})
}

func (h *BoltHibernator) Delete(_ context.Context, sessionID string) error {
	return h.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete([]byte(sessionID))
	})
}

func (h *BoltHibernator) Close() error {
	return h.db.Close()
}
