package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/allisson/stepup/internal/database"
	apperrors "github.com/allisson/stepup/internal/errors"
	policyDomain "github.com/allisson/stepup/internal/policy/domain"
)

// PostgreSQLApprovalRepository implements approval persistence for
// PostgreSQL databases. The policy snapshot, decision log, and policy
// evaluations are stored as JSONB documents; status is never stored because
// it is always recomputed from the log on read.
type PostgreSQLApprovalRepository struct {
	db *sql.DB
}

// NewPostgreSQLApprovalRepository creates a PostgreSQL-backed approval store.
func NewPostgreSQLApprovalRepository(db *sql.DB) *PostgreSQLApprovalRepository {
	return &PostgreSQLApprovalRepository{db: db}
}

// Create inserts a newly tracked approval.
func (p *PostgreSQLApprovalRepository) Create(ctx context.Context, approval *policyDomain.Approval) error {
	querier := database.GetTx(ctx, p.db)

	snapshot, decisions, evaluations, err := marshalApproval(approval)
	if err != nil {
		return err
	}

	query := `INSERT INTO approvals (id, initiator_id, snapshot, decisions, evaluations, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

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
// The snapshot is immutable after Create; mid-flight policy edits must not
// alter what the approval resolves under.
func (p *PostgreSQLApprovalRepository) Update(ctx context.Context, approval *policyDomain.Approval) error {
	querier := database.GetTx(ctx, p.db)

	_, decisions, evaluations, err := marshalApproval(approval)
	if err != nil {
		return err
	}

	query := `UPDATE approvals SET decisions = $1, evaluations = $2 WHERE id = $3`

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
func (p *PostgreSQLApprovalRepository) Get(ctx context.Context, approvalID string) (*policyDomain.Approval, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, initiator_id, snapshot, decisions, evaluations, created_at
			  FROM approvals
			  WHERE id = $1`

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
func (p *PostgreSQLApprovalRepository) List(ctx context.Context) ([]*policyDomain.Approval, error) {
	querier := database.GetTx(ctx, p.db)

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

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApproval(row rowScanner) (*policyDomain.Approval, error) {
	var approval policyDomain.Approval
	var snapshot, decisions, evaluations []byte

	err := row.Scan(
		&approval.ID,
		&approval.InitiatorID,
		&snapshot,
		&decisions,
		&evaluations,
		&approval.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(snapshot, &approval.Snapshot); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode approval snapshot")
	}
	if len(decisions) > 0 {
		if err := json.Unmarshal(decisions, &approval.Decisions); err != nil {
			return nil, apperrors.Wrap(err, "failed to decode approval decisions")
		}
	}
	if len(evaluations) > 0 {
		if err := json.Unmarshal(evaluations, &approval.Evaluations); err != nil {
			return nil, apperrors.Wrap(err, "failed to decode policy evaluations")
		}
	}
	return &approval, nil
}

func marshalApproval(approval *policyDomain.Approval) (snapshot, decisions, evaluations []byte, err error) {
	snapshot, err = json.Marshal(approval.Snapshot)
	if err != nil {
		return nil, nil, nil, apperrors.Wrap(err, "failed to encode approval snapshot")
	}
	decisions, err = json.Marshal(approval.Decisions)
	if err != nil {
		return nil, nil, nil, apperrors.Wrap(err, "failed to encode approval decisions")
	}
	evaluations, err = json.Marshal(approval.Evaluations)
	if err != nil {
		return nil, nil, nil, apperrors.Wrap(err, "failed to encode policy evaluations")
	}
	return snapshot, decisions, evaluations, nil
}
