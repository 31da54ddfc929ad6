package auth

import (
	"context"

	"github.com/uptrace/bun"
)

type uniqueActiveIndex struct {
	model  any
	name   string
	column string
}

var uniqueActiveIndexes = []uniqueActiveIndex{
	{model: (*User)(nil), name: "users_login_active_uniq", column: userColumnLogin},
	{model: (*User)(nil), name: "users_email_active_uniq", column: userColumnEmail},
	{model: (*User)(nil), name: "users_identifier_active_uniq", column: userColumnIdentifier},
}

// Models lists every table managed by the package
func Models() []any {
	return []any{
		(*User)(nil),
		(*RefreshToken)(nil),
		(*Scheduling)(nil),
	}
}

// CreateSchema creates the tables and indexes if they do not exist.
// Uniqueness of user values only applies to active rows so a soft
// deleted login can be registered again.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return passthrough(err, "failed to create table")
		}
	}

	for _, idx := range uniqueActiveIndexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.column).
			Unique().
			IfNotExists().
			Where("active = ?", true).
			Exec(ctx)
		if err != nil {
			return passthrough(err, "failed to create index "+idx.name)
		}
	}

	_, err := db.NewCreateIndex().
		Model((*RefreshToken)(nil)).
		Index("refresh_tokens_user_id_idx").
		Column("user_id").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return passthrough(err, "failed to create index refresh_tokens_user_id_idx")
	}

	return nil
}
