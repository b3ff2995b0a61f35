package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  The json
// tags are omitted here because these structs are used internally by the
// repository layer; handlers define separate response types with
// appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  Username     – unique display name.
//  PasswordHash – bcrypt hashed password.
//  Enabled      – whether the account may submit and verify contributions.
//  Permissions  – moderation permissions (per field kind, plus ALL).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64        // users.id
	Email        string        // users.email
	Username     string        // users.username
	PasswordHash string        // users.password_hash
	Enabled      bool          // users.enabled
	Permissions  PermissionSet // users.permissions (JSON array)
	CreatedAt    time.Time     // users.created_at
	UpdatedAt    time.Time     // users.updated_at
}
