// Package repository provides data access layer implementations for the
// application.
package repository

import (
	"context"
	"fmt"

	"github.com/gavinschriver/whereithurts-server/internal/models"

	"gorm.io/gorm"
)

// dedupe preserves first-seen order while dropping repeated ids.
func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// resolveMany looks up every id and returns the full set, or a
// MissingReferenceError naming kind if any id fails to resolve. Handlers call
// this for every incoming id list before mutating anything, so a single bad
// id aborts the whole request.
func resolveMany[T any](ctx context.Context, db *gorm.DB, ids []uint, kind string) ([]*T, error) {
	unique := dedupe(ids)
	rows := make([]*T, 0, len(unique))
	if len(unique) == 0 {
		return rows, nil
	}
	if err := db.WithContext(ctx).Where("id IN ?", unique).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) != len(unique) {
		return nil, models.NewMissingReferenceError(kind)
	}
	return rows, nil
}

// syncBridgeRows reconciles the bridge table's rows for one parent against
// the desired child id set: stale rows are deleted, missing rows inserted,
// unchanged rows left untouched. childIDs must already be resolved.
func syncBridgeRows(tx *gorm.DB, table, parentCol, childCol string, parentID uint, childIDs []uint) error {
	desired := make(map[uint]struct{}, len(childIDs))
	for _, id := range dedupe(childIDs) {
		desired[id] = struct{}{}
	}

	var existing []uint
	if err := tx.Table(table).Where(parentCol+" = ?", parentID).Pluck(childCol, &existing).Error; err != nil {
		return err
	}

	current := make(map[uint]struct{}, len(existing))
	stale := make([]uint, 0)
	for _, id := range existing {
		current[id] = struct{}{}
		if _, ok := desired[id]; !ok {
			stale = append(stale, id)
		}
	}

	if len(stale) > 0 {
		q := fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s IN ?", table, parentCol, childCol)
		if err := tx.Exec(q, parentID, stale).Error; err != nil {
			return err
		}
	}

	for _, id := range childIDs {
		if _, ok := current[id]; ok {
			continue
		}
		current[id] = struct{}{}
		row := map[string]interface{}{parentCol: parentID, childCol: id}
		if err := tx.Table(table).Create(row).Error; err != nil {
			return err
		}
	}

	return nil
}

// deleteBridgeRows removes every bridge row referencing the given id in col.
func deleteBridgeRows(tx *gorm.DB, table, col string, id uint) error {
	return tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, col), id).Error
}
