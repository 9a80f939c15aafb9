package postgres

import (
	"context"
	"errors"
	"time"

	"fishguard/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrackingRepository stores boats, positions and warnings
type TrackingRepository struct {
	db *gorm.DB
}

// NewTrackingRepository wraps an open database
func NewTrackingRepository(db *gorm.DB) *TrackingRepository {
	return &TrackingRepository{db: db}
}

// SaveReport upserts the boat and appends the position in one transaction.
// An empty boat name keeps the stored one.
func (r *TrackingRepository) SaveReport(ctx context.Context, boat model.Boat, pos model.Position) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := []string{"last_update_time"}
		if boat.Name != "" {
			updates = append(updates, "boat_name")
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "boat_id"}},
			DoUpdates: clause.AssignmentColumns(updates),
		}).Create(&boat).Error
		if err != nil {
			return err
		}

		return tx.Create(&pos).Error
	})
}

// InsertWarning stores a warning row
func (r *TrackingRepository) InsertWarning(ctx context.Context, w *model.Warning) error {
	return r.db.WithContext(ctx).Create(w).Error
}

// CountWarningsBetween counts warnings with start <= timestamp <= end
func (r *TrackingRepository) CountWarningsBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Warning{}).
		Where("timestamp BETWEEN ? AND ?", start, end).
		Count(&count).Error
	return count, err
}

// BoatName returns the stored name of a boat, empty if unknown
func (r *TrackingRepository) BoatName(ctx context.Context, boatID string) (string, error) {
	var boat model.Boat
	err := r.db.WithContext(ctx).Select("boat_name").Where("boat_id = ?", boatID).Take(&boat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return boat.Name, err
}

// ListBoats returns all boats, most recently updated first
func (r *TrackingRepository) ListBoats(ctx context.Context) ([]model.Boat, error) {
	var boats []model.Boat
	err := r.db.WithContext(ctx).Order("last_update_time DESC").Find(&boats).Error
	return boats, err
}

// PositionsBetween returns a boat's positions in ascending time order
func (r *TrackingRepository) PositionsBetween(ctx context.Context, boatID string, start, end time.Time) ([]model.Position, error) {
	var positions []model.Position
	err := r.db.WithContext(ctx).
		Select("timestamp", "latitude", "longitude").
		Where("boat_id = ? AND timestamp BETWEEN ? AND ?", boatID, start, end).
		Order("timestamp ASC").
		Find(&positions).Error
	return positions, err
}

// WarningsForBoat returns a boat's warnings in ascending time order
func (r *TrackingRepository) WarningsForBoat(ctx context.Context, boatID string, start, end time.Time) ([]model.Warning, error) {
	var warnings []model.Warning
	err := r.warningsWithNames(ctx).
		Where("warnings.boat_id = ? AND warnings.timestamp BETWEEN ? AND ?", boatID, start, end).
		Order("warnings.timestamp ASC").
		Scan(&warnings).Error
	return warnings, err
}

// WarningsBetween returns all boats' warnings in ascending time order
func (r *TrackingRepository) WarningsBetween(ctx context.Context, start, end time.Time) ([]model.Warning, error) {
	var warnings []model.Warning
	err := r.warningsWithNames(ctx).
		Where("warnings.timestamp BETWEEN ? AND ?", start, end).
		Order("warnings.timestamp ASC").
		Scan(&warnings).Error
	return warnings, err
}

func (r *TrackingRepository) warningsWithNames(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("warnings").
		Select("warnings.*, COALESCE(boats.boat_name, '') AS boat_name").
		Joins("LEFT JOIN boats ON boats.boat_id = warnings.boat_id")
}
