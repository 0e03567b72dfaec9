package database

import (
	"context"
	"fmt"
)

// UserTable is the SurrealDB table holding user records
const UserTable = "user"

// surrealUserSchema defines the user table. Record ids are the user UUID so
// lookups by id never scan.
var surrealUserSchema = []string{
	`DEFINE TABLE IF NOT EXISTS user SCHEMAFULL`,
	`DEFINE FIELD IF NOT EXISTS user_id ON user TYPE string`,
	`DEFINE FIELD IF NOT EXISTS user_name ON user TYPE string ASSERT string::len($value) > 0 AND string::len($value) <= 50`,
	`DEFINE FIELD IF NOT EXISTS email ON user TYPE string ASSERT string::len($value) <= 50`,
	`DEFINE FIELD IF NOT EXISTS password ON user TYPE string`,
	`DEFINE FIELD IF NOT EXISTS full_name ON user TYPE string ASSERT string::len($value) <= 150`,
	`DEFINE FIELD IF NOT EXISTS user_status ON user TYPE string ASSERT $value IN ['ACTIVE', 'BLOCKED']`,
	`DEFINE FIELD IF NOT EXISTS user_type ON user TYPE string ASSERT $value IN ['ADMIN', 'STUDENT', 'INSTRUCTOR']`,
	`DEFINE FIELD IF NOT EXISTS phone_number ON user TYPE string`,
	`DEFINE FIELD IF NOT EXISTS cpf ON user TYPE string`,
	`DEFINE FIELD IF NOT EXISTS image_url ON user TYPE option<string>`,
	`DEFINE FIELD IF NOT EXISTS creation_date ON user TYPE datetime`,
	`DEFINE FIELD IF NOT EXISTS last_update_date ON user TYPE datetime`,
	`DEFINE INDEX IF NOT EXISTS user_user_name_idx ON user FIELDS user_name UNIQUE`,
	`DEFINE INDEX IF NOT EXISTS user_email_idx ON user FIELDS email UNIQUE`,
}

// DefineSurrealSchema applies the user table definition. Safe to run repeatedly.
func DefineSurrealSchema(ctx context.Context, db Database) error {
	for _, stmt := range surrealUserSchema {
		if err := db.Execute(ctx, stmt, nil); err != nil {
			return fmt.Errorf("define schema: %w", err)
		}
	}
	return nil
}
