// Package store persists the session credential record. The durable
// implementation rides on Bun over SQLite so the record survives process
// restarts; Memory backs tests and hosts without a database.
package store

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"github.com/Crzzy98/BTG"
)

const (
	keyAccessToken  = "accessToken"
	keyIDToken      = "idToken"
	keyRefreshToken = "refreshToken"
	keySubject      = "sub"
)

// CredentialRow is the Bun model for one credential field.
type CredentialRow struct {
	bun.BaseModel `bun:"table:session_credentials,alias:crd"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}

// Credentials is a bun-backed session.CredentialStore holding the four
// credential keys as rows. Save overwrites the whole record inside one
// transaction so a reader never observes a partial write.
type Credentials struct {
	db *bun.DB
}

// NewCredentials creates the store. The caller owns the *bun.DB.
func NewCredentials(db *bun.DB) *Credentials {
	return &Credentials{db: db}
}

// CreateTable creates the backing table if needed. Hosts that manage
// migrations themselves can skip this.
func (s *Credentials) CreateTable(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*CredentialRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return session.WrapKind(err, session.KindStorage, "failed to create credential table")
	}
	return nil
}

// Save implements session.CredentialStore.
func (s *Credentials) Save(ctx context.Context, creds session.Credentials) error {
	if err := creds.Validate(); err != nil {
		return session.WrapKind(err, session.KindStorage, "refusing to persist partial credentials")
	}

	rows := []CredentialRow{
		{Key: keyAccessToken, Value: creds.AccessToken},
		{Key: keyIDToken, Value: creds.IDToken},
		{Key: keyRefreshToken, Value: creds.RefreshToken},
		{Key: keySubject, Value: creds.SubjectID},
	}

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*CredentialRow)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	if err != nil {
		return session.WrapKind(err, session.KindStorage, "failed to persist credentials")
	}

	return nil
}

// Load implements session.CredentialStore. A missing or partial record
// reads as absent; only I/O failures error.
func (s *Credentials) Load(ctx context.Context) (*session.Credentials, error) {
	var rows []CredentialRow
	if err := s.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, session.WrapKind(err, session.KindStorage, "failed to load credentials")
	}

	byKey := make(map[string]string, len(rows))
	for _, row := range rows {
		byKey[row.Key] = row.Value
	}

	creds := &session.Credentials{
		AccessToken:  byKey[keyAccessToken],
		IDToken:      byKey[keyIDToken],
		RefreshToken: byKey[keyRefreshToken],
		SubjectID:    byKey[keySubject],
	}
	if err := creds.Validate(); err != nil {
		return nil, nil
	}

	return creds, nil
}

// Clear implements session.CredentialStore; clearing an empty store
// succeeds.
func (s *Credentials) Clear(ctx context.Context) error {
	_, err := s.db.NewDelete().Model((*CredentialRow)(nil)).Where("1 = 1").Exec(ctx)
	if err != nil {
		return session.WrapKind(err, session.KindStorage, "failed to clear credentials")
	}
	return nil
}
