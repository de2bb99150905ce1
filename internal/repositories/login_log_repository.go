package repositories

import (
	"context"

	"distro-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LoginLogRepository struct {
	DB *pgxpool.Pool
}

func NewLoginLogRepository(db *pgxpool.Pool) *LoginLogRepository {
	return &LoginLogRepository{DB: db}
}

func (r *LoginLogRepository) Record(ctx context.Context, l *models.LoginLog) error {
	query := `
		INSERT INTO login_logs(user_id, email, ip_address, user_agent, success)
		VALUES($1, $2, $3, $4, $5)
		RETURNING id, login_at
	`
	return r.DB.QueryRow(ctx, query,
		l.UserID, l.Email, l.IPAddress, l.UserAgent, l.Success,
	).Scan(&l.ID, &l.LoginAt)
}

// RecordLogout stamps logout on the user's most recent open session.
func (r *LoginLogRepository) RecordLogout(ctx context.Context, userID int) error {
	query := `
		UPDATE login_logs
		SET logout_at = NOW()
		WHERE id = (
			SELECT id FROM login_logs
			WHERE user_id = $1 AND success AND logout_at IS NULL
			ORDER BY login_at DESC
			LIMIT 1
		)
	`
	_, err := r.DB.Exec(ctx, query, userID)
	return err
}

func (r *LoginLogRepository) ListRecent(ctx context.Context, limit int) ([]*models.LoginLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `
		SELECT l.id, l.user_id, COALESCE(u.name, ''), l.email, l.ip_address, l.user_agent,
		       l.success, l.login_at, l.logout_at
		FROM login_logs l
		LEFT JOIN users u ON u.id = l.user_id
		ORDER BY l.login_at DESC
		LIMIT $1
	`
	rows, err := r.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.LoginLog
	for rows.Next() {
		l := &models.LoginLog{}
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.UserName, &l.Email, &l.IPAddress, &l.UserAgent,
			&l.Success, &l.LoginAt, &l.LogoutAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
