package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/imagify/imagify-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

const userColumns = `id, username, email, hashed_password, is_verified, is_active, provider,
	first_name, last_name, phone_number, profile_image_url,
	verification_code, verification_expires_at,
	reset_code, reset_expires_at, reset_verified,
	google_sub, google_picture, last_google_id_token,
	last_login_ip, last_login_device, last_login_at,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var user model.User
	var googleSub, googlePicture, lastIDToken *string

	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsVerified, &user.IsActive, &user.Provider,
		&user.FirstName, &user.LastName, &user.PhoneNumber, &user.ProfileImageURL,
		&user.VerificationCode, &user.VerificationExpiresAt,
		&user.ResetCode, &user.ResetExpiresAt, &user.ResetVerified,
		&googleSub, &googlePicture, &lastIDToken,
		&user.LastLoginIP, &user.LastLoginDevice, &user.LastLoginAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}

	if googleSub != nil {
		identity := model.GoogleIdentity{Subject: *googleSub}
		if googlePicture != nil {
			identity.Picture = *googlePicture
		}
		if lastIDToken != nil {
			identity.LastIDToken = *lastIDToken
		}
		user.Google = &identity
	}

	return user, nil
}

func googleFields(user model.User) (sub, picture, lastIDToken *string) {
	if user.Google == nil {
		return nil, nil, nil
	}
	sub = &user.Google.Subject
	if user.Google.Picture != "" {
		picture = &user.Google.Picture
	}
	if user.Google.LastIDToken != "" {
		lastIDToken = &user.Google.LastIDToken
	}
	return sub, picture, lastIDToken
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, model.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (
			id, username, email, hashed_password, is_verified, is_active, provider,
			first_name, last_name, phone_number, profile_image_url,
			verification_code, verification_expires_at,
			reset_code, reset_expires_at, reset_verified,
			google_sub, google_picture, last_google_id_token,
			last_login_ip, last_login_device, last_login_at,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
		RETURNING ` + userColumns

	sub, picture, lastIDToken := googleFields(user)

	saved, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Username, model.NormalizeEmail(user.Email), user.PasswordHash, user.IsVerified, user.IsActive, user.Provider,
		user.FirstName, user.LastName, user.PhoneNumber, user.ProfileImageURL,
		user.VerificationCode, user.VerificationExpiresAt,
		user.ResetCode, user.ResetExpiresAt, user.ResetVerified,
		sub, picture, lastIDToken,
		user.LastLoginIP, user.LastLoginDevice, user.LastLoginAt,
		user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return model.User{}, dup
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) Update(ctx context.Context, user model.User) error {
	query := `UPDATE users SET
			username = $2, email = $3, hashed_password = $4, is_verified = $5, is_active = $6,
			first_name = $7, last_name = $8, phone_number = $9, profile_image_url = $10,
			verification_code = $11, verification_expires_at = $12,
			reset_code = $13, reset_expires_at = $14, reset_verified = $15,
			google_sub = $16, google_picture = $17, last_google_id_token = $18,
			last_login_ip = $19, last_login_device = $20, last_login_at = $21,
			updated_at = NOW()
		WHERE id = $1`

	sub, picture, lastIDToken := googleFields(user)

	tag, err := r.db.Exec(ctx, query,
		user.ID,
		user.Username, model.NormalizeEmail(user.Email), user.PasswordHash, user.IsVerified, user.IsActive,
		user.FirstName, user.LastName, user.PhoneNumber, user.ProfileImageURL,
		user.VerificationCode, user.VerificationExpiresAt,
		user.ResetCode, user.ResetExpiresAt, user.ResetVerified,
		sub, picture, lastIDToken,
		user.LastLoginIP, user.LastLoginDevice, user.LastLoginAt,
	)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// duplicateError maps a postgres unique-index violation onto the duplicate
// sentinel for the index that fired, or nil for any other error. The race
// between an existence check and an insert is closed here, not in
// application code.
func duplicateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}

	switch pgErr.ConstraintName {
	case "uq_users_email":
		return model.ErrDuplicateEmail
	case "uq_users_username":
		return model.ErrDuplicateUsername
	}
	return model.ErrDuplicate
}
