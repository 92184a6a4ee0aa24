package sync

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/isirwatch/backend/pkg/db/models"
)

// Repository is the GORM-backed Store implementation for the sync cycle.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a sync repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetCursor returns the named cursor, creating it at zero on first use.
func (r *Repository) GetCursor(ctx context.Context, name string) (int64, error) {
	var counter models.Counter
	err := r.db.WithContext(ctx).
		Where(models.Counter{ID: name}).
		FirstOrCreate(&counter).Error
	if err != nil {
		return 0, err
	}
	return counter.Number, nil
}

// SetCursor persists the named cursor's new position.
func (r *Repository) SetCursor(ctx context.Context, name string, value int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Counter{}).
		Where("id = ?", name).
		UpdateColumn("number", value).Error
}

// InsertTransactions stores a fetched batch of raw rows. Rows already present
// from an earlier cycle are left untouched, so refetching after a crash is
// harmless.
func (r *Repository) InsertTransactions(ctx context.Context, rows []models.Transaction) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// PendingTransactions returns all un-errored raw rows in ascending id order.
// The selection is deliberately not limited to the latest fetch; that makes
// the reconciliation pass resumable after a restart.
func (r *Repository) PendingTransactions(ctx context.Context) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := r.db.WithContext(ctx).
		Where("error = ?", false).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkErrored flags a raw row as failed so future passes and the purge skip
// it. Flagged rows stay for operator inspection.
func (r *Repository) MarkErrored(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		UpdateColumn("error", true).Error
}

// PurgeProcessed deletes every successfully handled raw row and reports how
// many were removed.
func (r *Repository) PurgeProcessed(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("error = ?", false).
		Delete(&models.Transaction{})
	return res.RowsAffected, res.Error
}

// CasesMissingLink returns every case still lacking its detail-page link, in
// ascending id order, for the supplement sweep.
func (r *Repository) CasesMissingLink(ctx context.Context) ([]models.Vec, error) {
	var cases []models.Vec
	err := r.db.WithContext(ctx).
		Where("link IS NULL").
		Order("id ASC").
		Find(&cases).Error
	if err != nil {
		return nil, err
	}
	return cases, nil
}

// SetCaseSupplement fills the senate number and detail-page link produced by
// the supplement lookup.
func (r *Repository) SetCaseSupplement(ctx context.Context, vecID uint, senate *int, link string) error {
	return r.db.WithContext(ctx).
		Model(&models.Vec{}).
		Where("id = ?", vecID).
		Updates(map[string]any{"senate": senate, "link": link}).Error
}

// PurgeErroneousCases deletes every case whose state matches the erroneous
// record marker, together with its role links and tracked markers.
func (r *Repository) PurgeErroneousCases(ctx context.Context, marker string) (int64, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Vec{}).
		Joins("JOIN state_kinds ON state_kinds.id = veci.state_kind_id").
		Where("state_kinds.description = ?", marker).
		Pluck("veci.id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := r.db.WithContext(ctx).Exec("DELETE FROM vec_role WHERE vec_id IN ?", ids).Error; err != nil {
		return 0, err
	}
	if err := r.db.WithContext(ctx).Where("vec_id IN ?", ids).Delete(&models.Tracked{}).Error; err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Vec{})
	return res.RowsAffected, res.Error
}
