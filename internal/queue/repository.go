/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package queue

import "context"

// Repository is the narrow slice of the catalog/queue/SCA remote service
// that the queue state machine itself calls (§6 "Catalog/queue repository").
// Defined here, where it is used, rather than in internal/repository, which
// holds the full collaborator surface the façade needs — this package only
// ever calls the methods below.
type Repository interface {
	List(ctx context.Context, limit int) ([]*Song, error)
	Add(ctx context.Context, uuids []string) ([]*Song, error)
	Remove(ctx context.Context, positions []int) error
	SetIndex(ctx context.Context, i int) error
	Reorder(ctx context.Context, from, to int) error
	ReorderBatch(ctx context.Context, indices []int, to int) error
	Clear(ctx context.Context) error
	Sort(ctx context.Context, field, order string) ([]*Song, error)
	AddByPath(ctx context.Context, path string) ([]*Song, error)
	AddByFilter(ctx context.Context, filter string) ([]*Song, error)
	AddByPlaylist(ctx context.Context, id string, shuffle bool) ([]*Song, error)
	SaveAsPlaylist(ctx context.Context, name, desc string, public bool) (string, error)

	StartScaFromQueue(ctx context.Context) ([]*Song, error)
	StartScaFromPlaylist(ctx context.Context, id string) ([]*Song, error)
	StartRadio(ctx context.Context, seedUUID, filter *string) ([]*Song, error)
	StopSca(ctx context.Context) error
	PopulateQueue(ctx context.Context, n int) ([]*Song, error)

	RecordHistory(ctx context.Context, uuid string, seconds float64, wasSkipped bool, source string) error
}
