package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	domainscan "github.com/turtacn/LabelScan-Intelligence/internal/domain/scan"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

const scanColumns = `id, owner_id, name, extracted_text, frequency, score, grade, score_details,
	catalog_version, image_key, created_at, updated_at`

type postgresScanRepo struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

// NewPostgresScanRepo returns a scan repository backed by the scans table.
func NewPostgresScanRepo(conn *postgres.Connection, log logging.Logger) domainscan.Repository {
	return &postgresScanRepo{
		conn:     conn,
		log:      log,
		executor: conn.DB(),
	}
}

func (r *postgresScanRepo) Create(ctx context.Context, s *domainscan.Scan) error {
	details, err := json.Marshal(s.ScoreDetails)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode score details")
	}
	query := `
		INSERT INTO scans (` + scanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.executor.ExecContext(ctx, query,
		s.ID, s.OwnerID, s.Name, s.ExtractedText, string(s.Frequency), s.Score, string(s.Grade), details,
		s.CatalogVersion, s.ImageKey, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return errors.Wrap(err, errors.ErrCodeScanAlreadyExists, "scan already exists").WithDetail(s.ID)
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create scan")
	}
	return nil
}

func (r *postgresScanRepo) GetByID(ctx context.Context, id string) (*domainscan.Scan, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.New(errors.ErrCodeScanNotFound, "scan not found").WithDetail(id)
	}
	query := `SELECT ` + scanColumns + ` FROM scans WHERE id = $1`
	s, err := scanScan(r.executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrCodeScanNotFound, "scan not found").WithDetail(id)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to get scan")
	}
	return s, nil
}

// ownerFilter renders the WHERE clause shared by the history list and count.
func ownerFilter(ownerID string, o domainscan.ListOptions) (string, []interface{}) {
	conds := []string{"owner_id = $1"}
	args := []interface{}{ownerID}
	if o.Frequency != "" {
		args = append(args, string(o.Frequency))
		conds = append(conds, fmt.Sprintf("frequency = $%d", len(args)))
	}
	if o.Grade != "" {
		args = append(args, string(o.Grade))
		conds = append(conds, fmt.Sprintf("grade = $%d", len(args)))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *postgresScanRepo) ListByOwner(ctx context.Context, ownerID string, opts ...domainscan.ListOption) ([]*domainscan.Scan, int64, error) {
	o := domainscan.ApplyListOptions(opts...)
	where, args := ownerFilter(ownerID, o)

	var total int64
	if err := r.executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM scans`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count scans")
	}

	query := fmt.Sprintf(`SELECT %s FROM scans%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		scanColumns, where, len(args)+1, len(args)+2)
	args = append(args, o.Limit, o.Offset)

	rows, err := r.executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list scans")
	}
	defer rows.Close()

	scans := make([]*domainscan.Scan, 0, o.Limit)
	for rows.Next() {
		s, err := scanScan(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read scan row")
		}
		scans = append(scans, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate scans")
	}
	return scans, total, nil
}

func (r *postgresScanRepo) UpdateScore(ctx context.Context, s *domainscan.Scan) error {
	details, err := json.Marshal(s.ScoreDetails)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode score details")
	}
	query := `
		UPDATE scans SET
			frequency = $3, score = $4, grade = $5, score_details = $6, catalog_version = $7, updated_at = $8
		WHERE id = $1 AND owner_id = $2
	`
	res, err := r.executor.ExecContext(ctx, query,
		s.ID, s.OwnerID, string(s.Frequency), s.Score, string(s.Grade), details, s.CatalogVersion, s.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update scan score")
	}
	return requireAffected(res, s.ID)
}

func (r *postgresScanRepo) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.executor.ExecContext(ctx, `DELETE FROM scans WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete scan")
	}
	return requireAffected(res, id)
}

func (r *postgresScanRepo) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	if err := r.executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM scans WHERE owner_id = $1`, ownerID).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count scans")
	}
	return n, nil
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read affected rows")
	}
	if n == 0 {
		return errors.New(errors.ErrCodeScanNotFound, "scan not found").WithDetail(id)
	}
	return nil
}

func scanScan(row scanner) (*domainscan.Scan, error) {
	var (
		s         domainscan.Scan
		frequency string
		grade     string
		details   []byte
	)
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.ExtractedText, &frequency, &s.Score, &grade, &details,
		&s.CatalogVersion, &s.ImageKey, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Frequency = scoring.Frequency(frequency)
	s.Grade = scoring.Grade(strings.TrimSpace(grade))
	s.ScoreDetails = &scoring.ScoreResult{}
	if err := json.Unmarshal(details, s.ScoreDetails); err != nil {
		return nil, fmt.Errorf("decode score_details: %w", err)
	}
	return &s, nil
}

//Personal.AI order the ending
