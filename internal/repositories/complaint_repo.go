package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mantavyam/jacob-web/internal/database"
	"github.com/mantavyam/jacob-web/internal/models"
)

const complaintColumns = `id, username, date_of_birth, address, state, district, pin, email,
		       mobile, gender, religion, caste, complaint, status, submission_date`

type ComplaintRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewComplaintRepository(db *database.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db, pool: db.Pool}
}

// rowScanner interface for scanning complaint rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanComplaintRow(scanner rowScanner) (*models.Complaint, error) {
	var c models.Complaint

	err := scanner.Scan(
		&c.ID, &c.Username, &c.DateOfBirth, &c.Address, &c.State, &c.District,
		&c.Pin, &c.Email, &c.Mobile, &c.Gender, &c.Religion, &c.Caste,
		&c.Complaint, &c.Status, &c.SubmissionDate,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &c, nil
}

func scanComplaintRows(rows pgx.Rows) ([]*models.Complaint, error) {
	defer rows.Close()

	complaints := make([]*models.Complaint, 0)

	for rows.Next() {
		c, err := scanComplaintRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating complaint rows: %w", err)
	}

	return complaints, nil
}

// Create inserts a complaint. The id, status and submission date are assigned
// by the database and returned on the new record.
func (r *ComplaintRepository) Create(ctx context.Context, c *models.Complaint) (*models.Complaint, error) {
	query := `
		INSERT INTO complaints (
			username, date_of_birth, address, state, district, pin, email,
			mobile, gender, religion, caste, complaint
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + complaintColumns

	created, err := scanComplaintRow(r.pool.QueryRow(
		ctx, query,
		c.Username, c.DateOfBirth, c.Address, c.State, c.District, c.Pin, c.Email,
		c.Mobile, c.Gender, c.Religion, c.Caste, c.Complaint,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create complaint: %w", err)
	}

	return created, nil
}

// List returns one page of complaints, newest first, and the number of rows
// matching the filter before pagination.
func (r *ComplaintRepository) List(ctx context.Context, f models.ListFilter) ([]*models.Complaint, int64, error) {
	where, args := listConditions(f)

	var total int64
	countQuery := `SELECT COUNT(*) FROM complaints` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count complaints: %w", database.MapPostgresError(err))
	}

	query := fmt.Sprintf(`SELECT %s FROM complaints%s
		ORDER BY submission_date DESC, id DESC
		LIMIT $%d OFFSET $%d`, complaintColumns, where, len(args)+1, len(args)+2)

	rows, err := r.pool.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query complaints: %w", database.MapPostgresError(err))
	}

	complaints, err := scanComplaintRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return complaints, total, nil
}

func listConditions(f models.ListFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.State != "" {
		args = append(args, f.State)
		conds = append(conds, fmt.Sprintf("state = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// FindByContact returns the complaints filed with the given email or mobile,
// newest first. A non-zero RefID narrows the match to that complaint.
func (r *ComplaintRepository) FindByContact(ctx context.Context, q models.CheckQuery) ([]*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints
		WHERE (($1::text <> '' AND email = $1::text) OR ($2::text <> '' AND mobile = $2::text))
		  AND ($3::bigint = 0 OR id = $3::bigint)
		ORDER BY submission_date DESC, id DESC
		LIMIT 20`

	rows, err := r.pool.Query(ctx, query, q.Email, q.Mobile, q.RefID)
	if err != nil {
		return nil, fmt.Errorf("failed to query complaints by contact: %w", database.MapPostgresError(err))
	}
	return scanComplaintRows(rows)
}

// Stats computes the dashboard aggregates. Both queries travel in a single
// batch so the counts come from one round trip.
func (r *ComplaintRepository) Stats(ctx context.Context, since time.Time) (*models.ComplaintStats, error) {
	batch := &pgx.Batch{}
	batch.Queue(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = $1),
		       COUNT(*) FILTER (WHERE status = $2),
		       COUNT(*) FILTER (WHERE status = $3),
		       COUNT(*) FILTER (WHERE status = $4),
		       COUNT(*) FILTER (WHERE submission_date > $5)
		FROM complaints`,
		models.StatusPending, models.StatusInProgress, models.StatusResolved, models.StatusClosed, since,
	)
	batch.Queue(`
		SELECT state, COUNT(*) AS count
		FROM complaints
		GROUP BY state
		ORDER BY count DESC, state ASC`)

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	stats := &models.ComplaintStats{ByState: make([]models.StateCount, 0)}
	err := results.QueryRow().Scan(
		&stats.Total, &stats.Pending, &stats.InProgress, &stats.Resolved, &stats.Closed, &stats.Recent24h,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count complaint statuses: %w", database.MapPostgresError(err))
	}

	rows, err := results.Query()
	if err != nil {
		return nil, fmt.Errorf("failed to count complaints by state: %w", database.MapPostgresError(err))
	}
	defer rows.Close()

	for rows.Next() {
		var sc models.StateCount
		if err := rows.Scan(&sc.State, &sc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan state count: %w", err)
		}
		stats.ByState = append(stats.ByState, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating state counts: %w", err)
	}

	return stats, nil
}

// UpdateStatus sets a complaint's status and appends a history entry in the
// same transaction. It returns the number of complaints changed.
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id int64, status string, changedByIP *string) (int64, error) {
	if !models.IsValidStatus(status) {
		return 0, fmt.Errorf("status %q: %w", status, models.ErrInvalidArgument)
	}

	var affected int64
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var old string
		err := tx.QueryRow(ctx, `SELECT status FROM complaints WHERE id = $1 FOR UPDATE`, id).Scan(&old)
		if err != nil {
			return database.MapPostgresError(err)
		}

		tag, err := tx.Exec(ctx, `UPDATE complaints SET status = $1 WHERE id = $2`, status, id)
		if err != nil {
			return database.MapPostgresError(err)
		}
		affected = tag.RowsAffected()

		_, err = tx.Exec(ctx, `
			INSERT INTO complaint_status_history (id, complaint_id, old_status, new_status, changed_by_ip)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), id, old, status, changedByIP,
		)
		return database.MapPostgresError(err)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to update status of complaint %d: %w", id, err)
	}

	return affected, nil
}

// History lists the status changes of a complaint, oldest first. An unknown
// complaint yields ErrNotFound rather than an empty list.
func (r *ComplaintRepository) History(ctx context.Context, complaintID int64) ([]*models.StatusChange, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM complaints WHERE id = $1)`, complaintID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to look up complaint %d: %w", complaintID, database.MapPostgresError(err))
	}
	if !exists {
		return nil, fmt.Errorf("complaint %d: %w", complaintID, models.ErrNotFound)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, complaint_id, old_status, new_status, changed_by_ip, changed_at
		FROM complaint_status_history
		WHERE complaint_id = $1
		ORDER BY changed_at ASC, id ASC`, complaintID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", database.MapPostgresError(err))
	}
	defer rows.Close()

	history := make([]*models.StatusChange, 0)
	for rows.Next() {
		var h models.StatusChange
		if err := rows.Scan(&h.ID, &h.ComplaintID, &h.OldStatus, &h.NewStatus, &h.ChangedByIP, &h.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}
		history = append(history, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status history: %w", err)
	}

	return history, nil
}
