package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/stepup/internal/database"
	apperrors "github.com/allisson/stepup/internal/errors"
	policyDomain "github.com/allisson/stepup/internal/policy/domain"
)

// MySQLApprovalRepository implements approval persistence for MySQL
// databases. Differs from the PostgreSQL variant only in placeholder syntax
// and column types (JSON instead of JSONB).
type MySQLApprovalRepository struct {
	db *sql.DB
}

// NewMySQLApprovalRepository creates a MySQL-backed approval store.
func NewMySQLApprovalRepository(db *sql.DB) *MySQLApprovalRepository {
	return &MySQLApprovalRepository{db: db}
}

// Create inserts a newly tracked approval.
func (m *MySQLApprovalRepository) Create(ctx context.Context, approval *policyDomain.Approval) error {
	querier := database.GetTx(ctx, m.db)

	snapshot, decisions, evaluations, err := marshalApproval(approval)
	if err != nil {
		return err
	}

	query := `INSERT INTO approvals (id, initiator_id, snapshot, decisions, evaluations, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		approval.ID,
		approval.InitiatorID,
		snapshot,
		decisions,
		evaluations,
		approval.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create approval")
	}
	return nil
}

// Update replaces the decision log and evaluations of a tracked approval.
func (m *MySQLApprovalRepository) Update(ctx context.Context, approval *policyDomain.Approval) error {
	querier := database.GetTx(ctx, m.db)

	_, decisions, evaluations, err := marshalApproval(approval)
	if err != nil {
		return err
	}

	query := `UPDATE approvals SET decisions = ?, evaluations = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, decisions, evaluations, approval.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update approval")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update approval")
	}
	if rows == 0 {
		return policyDomain.ErrApprovalNotFound
	}
	return nil
}

// Get retrieves a tracked approval by id.
func (m *MySQLApprovalRepository) Get(ctx context.Context, approvalID string) (*policyDomain.Approval, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, initiator_id, snapshot, decisions, evaluations, created_at
			  FROM approvals
			  WHERE id = ?`

	row := querier.QueryRowContext(ctx, query, approvalID)
	approval, err := scanApproval(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, policyDomain.ErrApprovalNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get approval")
	}
	return approval, nil
}

// List retrieves all tracked approvals ordered by creation time.
func (m *MySQLApprovalRepository) List(ctx context.Context) ([]*policyDomain.Approval, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, initiator_id, snapshot, decisions, evaluations, created_at
			  FROM approvals
			  ORDER BY created_at`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list approvals")
	}
	defer func() { _ = rows.Close() }()

	var approvals []*policyDomain.Approval
	for rows.Next() {
		approval, err := scanApproval(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan approval")
		}
		approvals = append(approvals, approval)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list approvals")
	}
	return approvals, nil
}
