package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrBadCredentials  = errors.New("bad credentials")
)

// Account is the durable login identity owning characters and boxes.
type Account struct {
	UID        uuid.UUID
	Username   string
	SessionKey int64
	UserLevel  int32
}

type AccountRepo struct {
	db *DB
}

func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Authenticate verifies a username/password pair against the stored
// bcrypt hash. When autoCreate is set and the username is unknown, a
// fresh account is created with the given password.
func (r *AccountRepo) Authenticate(ctx context.Context, username, password string, autoCreate bool) (*Account, error) {
	var (
		acct Account
		uid  string
		hash string
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT uid, username, password_hash, session_key, user_level FROM accounts WHERE username = $1`,
		username).Scan(&uid, &acct.Username, &hash, &acct.SessionKey, &acct.UserLevel)
	if errors.Is(err, pgx.ErrNoRows) {
		if !autoCreate {
			return nil, ErrAccountNotFound
		}
		return r.create(ctx, username, password)
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}

	acct.UID, err = uuid.Parse(uid)
	if err != nil {
		return nil, fmt.Errorf("account %s: bad uid: %w", username, err)
	}
	return &acct, nil
}

func (r *AccountRepo) create(ctx context.Context, username, password string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	acct := &Account{UID: uuid.New(), Username: username}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO accounts (uid, username, password_hash) VALUES ($1, $2, $3)`,
		acct.UID.String(), username, string(hash))
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return acct, nil
}

// VerifySessionKey checks the hand-off key issued by the lobby.
func (r *AccountRepo) VerifySessionKey(ctx context.Context, username string, key int64) (*Account, error) {
	var (
		acct Account
		uid  string
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT uid, username, session_key, user_level FROM accounts WHERE username = $1`,
		username).Scan(&uid, &acct.Username, &acct.SessionKey, &acct.UserLevel)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if acct.SessionKey == 0 || acct.SessionKey != key {
		return nil, ErrBadCredentials
	}
	acct.UID, err = uuid.Parse(uid)
	if err != nil {
		return nil, fmt.Errorf("account %s: bad uid: %w", username, err)
	}
	return &acct, nil
}

// SetSessionKey stores the hand-off key for a future channel login.
func (r *AccountRepo) SetSessionKey(ctx context.Context, accountUID uuid.UUID, key int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE accounts SET session_key = $2 WHERE uid = $1`,
		accountUID.String(), key)
	if err != nil {
		return fmt.Errorf("set session key: %w", err)
	}
	return nil
}
