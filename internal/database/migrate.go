package database

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order on startup.  Every statement is
// idempotent so restarting the service against an existing schema is safe.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS movies (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title      VARCHAR(500)    NOT NULL,
		status     VARCHAR(16)     NOT NULL DEFAULT 'ACCEPTED',
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_movies_status (status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		email         VARCHAR(255)    NOT NULL,
		username      VARCHAR(100)    NOT NULL,
		password_hash VARCHAR(100)    NOT NULL,
		enabled       TINYINT(1)      NOT NULL DEFAULT 1,
		permissions   JSON            NOT NULL,
		created_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME        NOT NULL,
		revoked_at DATETIME        NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_refresh_token_hash (token_hash),
		KEY idx_refresh_user (user_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	// dup_key holds a SHA-256 digest of the payload's duplicate key so
	// arbitrarily long texts still fit an indexable column.
	`CREATE TABLE IF NOT EXISTS field_records (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		movie_id     BIGINT UNSIGNED NOT NULL,
		submitter_id BIGINT UNSIGNED NOT NULL,
		kind         VARCHAR(32)     NOT NULL,
		status       VARCHAR(16)     NOT NULL,
		payload      JSON            NOT NULL,
		dup_key      CHAR(64)        NOT NULL,
		pending_change   VARCHAR(16) NOT NULL DEFAULT 'NONE',
		proposed_payload JSON        NULL,
		created_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_records_movie_kind_status (movie_id, kind, status),
		KEY idx_records_dup (movie_id, kind, dup_key),
		CONSTRAINT fk_records_movie FOREIGN KEY (movie_id) REFERENCES movies (id),
		CONSTRAINT fk_records_submitter FOREIGN KEY (submitter_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS contributions (
		id                BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		movie_id          BIGINT UNSIGNED NOT NULL,
		kind              VARCHAR(32)     NOT NULL,
		submitter_id      BIGINT UNSIGNED NOT NULL,
		ids_to_add        JSON            NOT NULL,
		ids_to_update     JSON            NOT NULL,
		ids_to_delete     JSON            NOT NULL,
		sources           JSON            NOT NULL,
		comment           TEXT            NOT NULL,
		status            VARCHAR(16)     NOT NULL,
		verification_decision VARCHAR(16) NULL,
		verification_comment  TEXT        NULL,
		verifier_id       BIGINT UNSIGNED NULL,
		verified_at       DATETIME        NULL,
		created_at        DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_contrib_movie (movie_id),
		KEY idx_contrib_kind_status (kind, status),
		KEY idx_contrib_created (created_at),
		CONSTRAINT fk_contrib_movie FOREIGN KEY (movie_id) REFERENCES movies (id),
		CONSTRAINT fk_contrib_submitter FOREIGN KEY (submitter_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate brings the schema up to date.  It is called once on startup,
// before the HTTP server begins accepting requests.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
