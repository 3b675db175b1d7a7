package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/arkadiusoo/travelmate/internal/models"
	"github.com/arkadiusoo/travelmate/internal/storage"
)

const participantColumns = `id, trip_id, user_id, email, role, status, created_at, joined_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row rowScanner) (*models.Participant, error) {
	p := &models.Participant{}
	var (
		userID, email        sql.NullString
		role, status         string
		createdAt, updatedAt int64
		joinedAt             sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.TripID, &userID, &email, &role, &status, &createdAt, &joinedAt, &updatedAt); err != nil {
		return nil, err
	}
	p.UserID = userID.String
	p.Email = email.String
	p.Role = models.Role(role)
	p.Status = models.InvitationStatus(status)
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	if joinedAt.Valid {
		t := fromMillis(joinedAt.Int64)
		p.JoinedAt = &t
	}
	return p, nil
}

func queryParticipant(ctx context.Context, q querier, where string, args ...any) (*models.Participant, error) {
	row := q.QueryRowContext(ctx, "SELECT "+participantColumns+" FROM participants WHERE "+where, args...)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

func queryParticipants(ctx context.Context, q querier, where string, args ...any) ([]*models.Participant, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+participantColumns+" FROM participants WHERE "+where+" ORDER BY created_at, id",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

// GetParticipant retrieves a participant by ID.
func (s *SQLiteStore) GetParticipant(ctx context.Context, id string) (*models.Participant, error) {
	return queryParticipant(ctx, s.db, "id = ?", id)
}

// ListParticipantsByTrip retrieves all participants of a trip in invitation order.
func (s *SQLiteStore) ListParticipantsByTrip(ctx context.Context, tripID string) ([]*models.Participant, error) {
	return queryParticipants(ctx, s.db, "trip_id = ?", tripID)
}

// FindParticipantByTripAndUser retrieves the participant record of a user on a trip.
func (s *SQLiteStore) FindParticipantByTripAndUser(ctx context.Context, tripID, userID string) (*models.Participant, error) {
	return queryParticipant(ctx, s.db, "trip_id = ? AND user_id = ?", tripID, userID)
}

// FindParticipantByTripAndEmail retrieves the participant record invited under an email.
func (s *SQLiteStore) FindParticipantByTripAndEmail(ctx context.Context, tripID, email string) (*models.Participant, error) {
	return queryParticipant(ctx, s.db, "trip_id = ? AND email = ? ORDER BY created_at LIMIT 1", tripID, normalizeEmail(email))
}

// ExistsParticipantByTripAndUser reports whether the user has any record on the trip.
func (s *SQLiteStore) ExistsParticipantByTripAndUser(ctx context.Context, tripID, userID string) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM participants WHERE trip_id = ? AND user_id = ?", tripID, userID)
}

// ExistsParticipantByTripAndEmail reports whether an invitation was recorded for the email.
func (s *SQLiteStore) ExistsParticipantByTripAndEmail(ctx context.Context, tripID, email string) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM participants WHERE trip_id = ? AND email = ?", tripID, normalizeEmail(email))
}

// ListPendingParticipantsForUser retrieves pending invitations addressed to the user.
func (s *SQLiteStore) ListPendingParticipantsForUser(ctx context.Context, userID, email string) ([]*models.Participant, error) {
	return queryParticipants(ctx, s.db,
		"status = ? AND (user_id = ? OR (user_id IS NULL AND email = ?))",
		string(models.StatusPending), userID, normalizeEmail(email),
	)
}

func (s *SQLiteStore) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query+" LIMIT 1", args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return true, nil
}

// SaveParticipant inserts or replaces a participant record.
func (s *SQLiteStore) SaveParticipant(ctx context.Context, p *models.Participant) error {
	return s.saveParticipant(ctx, s.db, p)
}

func (s *SQLiteStore) saveParticipant(ctx context.Context, q querier, p *models.Participant) error {
	s.stamp(p)
	_, err := q.ExecContext(ctx, `
		INSERT INTO participants (`+participantColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			email = excluded.email,
			role = excluded.role,
			status = excluded.status,
			joined_at = excluded.joined_at,
			updated_at = excluded.updated_at`,
		participantArgs(p)...,
	)
	if isUniqueViolation(err) {
		return storage.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to save participant: %w", err)
	}
	return nil
}

// CreateParticipant inserts a new participant record.
func (s *SQLiteStore) CreateParticipant(ctx context.Context, p *models.Participant) error {
	return s.insertParticipant(ctx, s.db, p)
}

// CreateFirstParticipant inserts p if its trip has no participants. The immediate
// transaction holds the write lock across the check and the insert.
func (s *SQLiteStore) CreateFirstParticipant(ctx context.Context, p *models.Participant) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM participants WHERE trip_id = ? LIMIT 1", p.TripID).Scan(&one)
		switch {
		case err == nil:
			return storage.ErrConflict
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("failed to check trip participants: %w", err)
		}
		return s.insertParticipant(ctx, tx, p)
	})
}

func (s *SQLiteStore) insertParticipant(ctx context.Context, q querier, p *models.Participant) error {
	s.stamp(p)
	_, err := q.ExecContext(ctx,
		"INSERT INTO participants ("+participantColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		participantArgs(p)...,
	)
	if isUniqueViolation(err) {
		return storage.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

// stamp fills in the ID and timestamps and normalizes the email before a write.
func (s *SQLiteStore) stamp(p *models.Participant) {
	now := s.now().UTC()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	p.Email = normalizeEmail(p.Email)
}

func participantArgs(p *models.Participant) []any {
	return []any{
		p.ID, p.TripID, nullString(p.UserID), nullString(p.Email), string(p.Role), string(p.Status),
		p.CreatedAt.UnixMilli(), nullTime(p.JoinedAt), p.UpdatedAt.UnixMilli(),
	}
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

// UpdateParticipant applies fn to the current record and saves it in one transaction.
func (s *SQLiteStore) UpdateParticipant(ctx context.Context, id string, fn func(p *models.Participant) error) (*models.Participant, error) {
	var updated *models.Participant
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		p, err := queryParticipant(ctx, tx, "id = ?", id)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		if err := s.saveParticipant(ctx, tx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteParticipant removes a participant by ID.
func (s *SQLiteStore) DeleteParticipant(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM participants WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted participant: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
