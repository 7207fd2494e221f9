package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intdb "carpool/internal/db"
	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/utils"
)

const profileColumns = `email, name, mobile, mobile_verified, role, vehicle, plan_expiry, referral_code, referred_by, telegram_chat_id, created_at, updated_at`

type ProfileRepository struct {
	DB *sql.DB
}

func (r ProfileRepository) db() *sql.DB {
	return connOr(r.DB)
}

func scanProfile(row scanner) (models.Profile, error) {
	var (
		p          models.Profile
		planExpiry sql.NullTime
		referredBy sql.NullString
		chatID     sql.NullInt64
	)
	err := row.Scan(
		&p.Email, &p.Name, &p.Mobile, &p.MobileVerified, &p.Role, &p.Vehicle,
		&planExpiry, &p.ReferralCode, &referredBy, &chatID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return models.Profile{}, err
	}
	if planExpiry.Valid {
		// Re-anchor the DATE in the service timezone so PlanActive compares calendar days.
		t, err := utils.ParseDate(planExpiry.Time.Format(dateLayout))
		if err == nil {
			p.PlanExpiry = &t
		}
	}
	p.ReferredBy = referredBy.String
	if chatID.Valid {
		id := chatID.Int64
		p.TelegramChatID = &id
	}
	return p, nil
}

func (r ProfileRepository) Get(ctx context.Context, email string) (models.Profile, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = ? LIMIT 1`, utils.NormalizeEmail(email))
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, domain.NotFoundError{Resource: "profile", Err: domain.ErrProfileNotFound}
		}
		return models.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r ProfileRepository) GetByReferralCode(ctx context.Context, code string) (models.Profile, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE referral_code = ? LIMIT 1`, code)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, domain.NotFoundError{Resource: "referral code", Err: domain.ErrProfileNotFound}
		}
		return models.Profile{}, fmt.Errorf("get profile by referral: %w", err)
	}
	return p, nil
}

func (r ProfileRepository) List(ctx context.Context) ([]models.Profile, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	out := []models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts a new profile. A clash on the email yields a conflict; a clash
// on the referral code yields ErrDuplicateReferralCode so callers can retry.
func (r ProfileRepository) Create(ctx context.Context, p models.Profile) error {
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Email, p.Name, p.Mobile, p.MobileVerified, p.Role, p.Vehicle,
		planDate(p.PlanExpiry), p.ReferralCode, intdb.NullIfEmpty(p.ReferredBy), chatIDArg(p.TelegramChatID), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			if _, getErr := r.Get(ctx, p.Email); getErr == nil {
				return domain.ConflictError{Resource: "profile", Msg: "profile already exists"}
			}
			return domain.ErrDuplicateReferralCode
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// Update writes the self-editable fields.
func (r ProfileRepository) Update(ctx context.Context, p models.Profile) error {
	_, err := r.db().ExecContext(ctx, `
		UPDATE profiles SET name = ?, mobile = ?, mobile_verified = ?, role = ?, vehicle = ?, telegram_chat_id = ?, updated_at = ?
		WHERE email = ?`,
		p.Name, p.Mobile, p.MobileVerified, p.Role, p.Vehicle, chatIDArg(p.TelegramChatID), p.UpdatedAt, p.Email)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (r ProfileRepository) SetMobileVerified(ctx context.Context, email string, now time.Time) error {
	return r.exec(ctx, "verify mobile", `UPDATE profiles SET mobile_verified = 1, updated_at = ? WHERE email = ?`, now, email)
}

func (r ProfileRepository) SetRole(ctx context.Context, email string, role domain.Role, now time.Time) error {
	return r.exec(ctx, "set role", `UPDATE profiles SET role = ?, updated_at = ? WHERE email = ?`, string(role), now, email)
}

func (r ProfileRepository) SetPlanExpiry(ctx context.Context, email string, expiry *time.Time, now time.Time) error {
	return r.exec(ctx, "set plan expiry", `UPDATE profiles SET plan_expiry = ?, updated_at = ? WHERE email = ?`, planDate(expiry), now, email)
}

// SetReferredBy records the referrer once; a second attempt is a conflict.
func (r ProfileRepository) SetReferredBy(ctx context.Context, email, code string, now time.Time) error {
	res, err := r.db().ExecContext(ctx,
		`UPDATE profiles SET referred_by = ?, updated_at = ? WHERE email = ? AND referred_by IS NULL`,
		code, now, email)
	if err != nil {
		return fmt.Errorf("set referral: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("referral rows affected: %w", err)
	}
	if n == 0 {
		if _, err := r.Get(ctx, email); err != nil {
			return err
		}
		return domain.ConflictError{Resource: "profile", Err: domain.ErrReferralAlreadySet}
	}
	return nil
}

func (r ProfileRepository) exec(ctx context.Context, action, query string, args ...any) error {
	res, err := r.db().ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", action, err)
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "profile", Err: domain.ErrProfileNotFound}
	}
	return nil
}

func planDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return utils.FormatDate(*t)
}

func chatIDArg(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
