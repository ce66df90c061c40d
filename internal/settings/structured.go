/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package settings

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/friendsincode/audioengine/internal/storage"
)

// ErrTempQueueNotFound is returned by LoadTempQueue when no snapshot exists.
var ErrTempQueueNotFound = errors.New("temp queue snapshot not found")

// StructuredStore persists the temp-queue snapshot — larger and less
// frequently read/written than the KV settings blobs, so it gets its own
// interface per spec §5.2 "the temp-queue snapshot uses the structured
// persistence store (suitable for larger sequences)".
type StructuredStore interface {
	SaveTempQueue(ctx context.Context, sessionID string, snapshot TempQueueSnapshot) error
	LoadTempQueue(ctx context.Context, sessionID string) (*TempQueueSnapshot, error)
	ClearTempQueue(ctx context.Context, sessionID string) error
}

// MemoryStructuredStore is an in-process StructuredStore, used by tests.
type MemoryStructuredStore struct {
	mu        sync.RWMutex
	snapshots map[string]TempQueueSnapshot
}

// NewMemoryStructuredStore creates an empty in-memory structured store.
func NewMemoryStructuredStore() *MemoryStructuredStore {
	return &MemoryStructuredStore{snapshots: make(map[string]TempQueueSnapshot)}
}

// SaveTempQueue stores snapshot for sessionID, overwriting any prior value.
func (m *MemoryStructuredStore) SaveTempQueue(_ context.Context, sessionID string, snapshot TempQueueSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[sessionID] = snapshot
	return nil
}

// LoadTempQueue retrieves the snapshot stored for sessionID.
func (m *MemoryStructuredStore) LoadTempQueue(_ context.Context, sessionID string) (*TempQueueSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot, ok := m.snapshots[sessionID]
	if !ok {
		return nil, ErrTempQueueNotFound
	}
	return &snapshot, nil
}

// ClearTempQueue deletes the snapshot stored for sessionID.
func (m *MemoryStructuredStore) ClearTempQueue(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, sessionID)
	return nil
}

// TempQueueRecord is the gorm model backing GormStore.
type TempQueueRecord struct {
	SessionID string `gorm:"primaryKey"`
	Payload   []byte
	UpdatedAt time.Time
}

// TableName pins the table name regardless of gorm's pluralization rules.
func (TempQueueRecord) TableName() string {
	return "temp_queue_snapshots"
}

// GormStore persists temp-queue snapshots in the relational settings DB
// (sqlite/postgres/mysql, selected the same way as internal/db.Connect).
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm DB connection as a StructuredStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// SaveTempQueue stores snapshot for sessionID, overwriting any prior value.
func (g *GormStore) SaveTempQueue(ctx context.Context, sessionID string, snapshot TempQueueSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	record := TempQueueRecord{SessionID: sessionID, Payload: payload, UpdatedAt: time.Now()}
	return g.db.WithContext(ctx).Save(&record).Error
}

// LoadTempQueue retrieves the snapshot stored for sessionID.
func (g *GormStore) LoadTempQueue(ctx context.Context, sessionID string) (*TempQueueSnapshot, error) {
	var record TempQueueRecord
	result := g.db.WithContext(ctx).First(&record, "session_id = ?", sessionID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrTempQueueNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	var snapshot TempQueueSnapshot
	if err := json.Unmarshal(record.Payload, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ClearTempQueue deletes the snapshot stored for sessionID.
func (g *GormStore) ClearTempQueue(ctx context.Context, sessionID string) error {
	return g.db.WithContext(ctx).Delete(&TempQueueRecord{}, "session_id = ?", sessionID).Error
}

// S3StructuredStore persists temp-queue snapshots as objects in an
// S3-compatible bucket, one object per session, for deployments that set
// ObjectStorageURL to an S3 endpoint instead of a relational DB.
type S3StructuredStore struct {
	objects storage.ObjectStore
}

// NewS3StructuredStore wraps an ObjectStore as a StructuredStore.
func NewS3StructuredStore(objects storage.ObjectStore) *S3StructuredStore {
	return &S3StructuredStore{objects: objects}
}

func tempQueueObjectKey(sessionID string) string {
	return "temp-queue/" + sessionID + ".json"
}

// SaveTempQueue stores snapshot for sessionID, overwriting any prior value.
func (s *S3StructuredStore) SaveTempQueue(ctx context.Context, sessionID string, snapshot TempQueueSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.objects.Put(ctx, tempQueueObjectKey(sessionID), payload)
}

// LoadTempQueue retrieves the snapshot stored for sessionID.
func (s *S3StructuredStore) LoadTempQueue(ctx context.Context, sessionID string) (*TempQueueSnapshot, error) {
	data, err := s.objects.Get(ctx, tempQueueObjectKey(sessionID))
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, ErrTempQueueNotFound
	}
	if err != nil {
		return nil, err
	}

	var snapshot TempQueueSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ClearTempQueue deletes the snapshot stored for sessionID.
func (s *S3StructuredStore) ClearTempQueue(ctx context.Context, sessionID string) error {
	return s.objects.Delete(ctx, tempQueueObjectKey(sessionID))
}
