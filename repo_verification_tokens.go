package auth

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// VerificationTokens persists email verification tokens. Lookups join on
// the owning account's email so a token minted for one account can never
// be redeemed against another.
type VerificationTokens interface {
	Create(ctx context.Context, token *VerificationToken) (*VerificationToken, error)
	CreateTx(ctx context.Context, tx bun.IDB, token *VerificationToken) (*VerificationToken, error)

	GetByDigestAndEmail(ctx context.Context, digest, email string) (*VerificationToken, error)
	GetByDigestAndEmailTx(ctx context.Context, tx bun.IDB, digest, email string) (*VerificationToken, error)

	Consume(ctx context.Context, id uuid.UUID) error
	ConsumeTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type verificationTokens struct {
	db *bun.DB
}

var _ VerificationTokens = (*verificationTokens)(nil)

func NewVerificationTokensRepository(db *bun.DB) VerificationTokens {
	return &verificationTokens{db: db}
}

func (r *verificationTokens) Create(ctx context.Context, token *VerificationToken) (*VerificationToken, error) {
	return r.CreateTx(ctx, r.db, token)
}

func (r *verificationTokens) CreateTx(ctx context.Context, tx bun.IDB, token *VerificationToken) (*VerificationToken, error) {
	if token == nil {
		return nil, errors.New("verification token must not be nil", errors.CategoryBadInput)
	}

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	if _, err := tx.NewInsert().Model(token).Exec(ctx); err != nil {
		return nil, err
	}

	return token, nil
}

func (r *verificationTokens) GetByDigestAndEmail(ctx context.Context, digest, email string) (*VerificationToken, error) {
	return r.GetByDigestAndEmailTx(ctx, r.db, digest, email)
}

func (r *verificationTokens) GetByDigestAndEmailTx(ctx context.Context, tx bun.IDB, digest, email string) (*VerificationToken, error) {
	record := &VerificationToken{}
	err := tx.NewSelect().
		Model(record).
		Join(`JOIN "users" AS "usr" ON "usr"."id" = ?TableAlias."user_id"`).
		Where("?TableAlias.token_hash = ?", digest).
		Where(`"usr"."email" = ?`, email).
		Where(`"usr"."deleted_at" IS NULL`).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows || repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (r *verificationTokens) Consume(ctx context.Context, id uuid.UUID) error {
	return r.ConsumeTx(ctx, r.db, id)
}

// ConsumeTx deletes the token row by id. The delete is conditional:
// when the row is already gone the call reports not found, which is the
// at-most-once primitive racing verifications rely on.
func (r *verificationTokens) ConsumeTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := tx.NewDelete().
		Model((*VerificationToken)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}
