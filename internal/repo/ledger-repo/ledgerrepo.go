package ledgerrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/GlebRadaev/goodpang/internal/domain"
	"github.com/GlebRadaev/goodpang/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const uniqueUserVersionConstraint = "unique_user_version"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// Latest returns the entry with the highest version for the user, or nil when the user has none.
func (r *Repository) Latest(ctx context.Context, userID int) (*domain.LedgerEntry, error) {
	query := `
		SELECT id, user_id, version, points_change, points_sum, reason, created_at
		FROM user_points
		WHERE user_id = $1
		ORDER BY version DESC
		LIMIT 1
	`
	var entry domain.LedgerEntry
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&entry.ID, &entry.UserID, &entry.Version, &entry.PointsChange, &entry.PointsSum, &entry.Reason, &entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't get latest ledger entry", zap.Error(err))
		return nil, err
	}
	return &entry, nil
}

// Append inserts entry at its (user, version). A taken version yields domain.ErrDuplicateKey.
func (r *Repository) Append(ctx context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error) {
	query := `
		INSERT INTO user_points (user_id, version, points_change, points_sum, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, entry.UserID, entry.Version, entry.PointsChange, entry.PointsSum, entry.Reason).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err, uniqueUserVersionConstraint) {
			zap.L().Warn("ledger version already taken",
				zap.Int("user_id", entry.UserID), zap.Int64("version", entry.Version))
			return nil, fmt.Errorf("user %d version %d: %w", entry.UserID, entry.Version, domain.ErrDuplicateKey)
		}
		zap.L().Error("can't append ledger entry", zap.Error(err))
		return nil, err
	}
	return entry, nil
}

// History returns the user's entries newest first.
func (r *Repository) History(ctx context.Context, userID int) ([]domain.LedgerEntry, error) {
	query := `
		SELECT id, user_id, version, points_change, points_sum, reason, created_at
		FROM user_points
		WHERE user_id = $1
		ORDER BY version DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("failed to fetch ledger history", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var entry domain.LedgerEntry
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.Version, &entry.PointsChange, &entry.PointsSum, &entry.Reason, &entry.CreatedAt)
		if err != nil {
			zap.L().Error("failed to scan ledger row", zap.Error(err))
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("failed to iterate ledger rows", zap.Error(err))
		return nil, err
	}
	return entries, nil
}

// FindDrifted lists users whose (points, version) differ from their latest ledger entry.
func (r *Repository) FindDrifted(ctx context.Context, limit uint32) ([]domain.WalletDrift, error) {
	query := `
		SELECT u.id, u.points, u.version, l.points_sum, l.version
		FROM service_user u
		JOIN LATERAL (
			SELECT p.points_sum, p.version
			FROM user_points p
			WHERE p.user_id = u.id
			ORDER BY p.version DESC
			LIMIT 1
		) l ON true
		WHERE u.version <> l.version OR u.points <> l.points_sum
		ORDER BY u.id
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, int(limit))
	if err != nil {
		zap.L().Error("can't find drifted wallets", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var drifts []domain.WalletDrift
	for rows.Next() {
		var d domain.WalletDrift
		if err := rows.Scan(&d.UserID, &d.WalletPoints, &d.WalletVersion, &d.LedgerSum, &d.LedgerVersion); err != nil {
			zap.L().Error("can't scan drifted wallet row", zap.Error(err))
			return nil, err
		}
		drifts = append(drifts, d)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("failed to iterate drifted wallet rows", zap.Error(err))
		return nil, err
	}
	return drifts, nil
}
