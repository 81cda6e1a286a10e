package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255),
		provider VARCHAR(50) NOT NULL DEFAULT 'email',
		provider_id VARCHAR(255),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS profiles (
		user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL DEFAULT '',
		display_name VARCHAR(201) NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// created_by is unique so a double-submitted "create family" resolves to one row.
	`CREATE TABLE IF NOT EXISTS families (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		created_by UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS family_members (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		family_id UUID NOT NULL REFERENCES families(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role VARCHAR(50) NOT NULL DEFAULT 'parent',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(family_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS family_invites (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		family_id UUID NOT NULL REFERENCES families(id) ON DELETE CASCADE,
		email VARCHAR(255) NOT NULL,
		token VARCHAR(128) NOT NULL UNIQUE,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		invited_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		accepted_by UUID REFERENCES users(id) ON DELETE SET NULL,
		accepted_at TIMESTAMP WITH TIME ZONE,
		expires_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CHECK (status IN ('pending', 'accepted'))
	)`,

	`CREATE TABLE IF NOT EXISTS requests (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		family_id UUID NOT NULL REFERENCES families(id) ON DELETE CASCADE,
		requested_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type VARCHAR(100) NOT NULL,
		details TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		start_date DATE NOT NULL,
		end_date DATE,
		decided_by UUID REFERENCES users(id) ON DELETE SET NULL,
		decided_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CHECK (status IN ('pending', 'approved', 'declined')),
		CHECK (decided_by IS NULL OR decided_by <> requested_by),
		CHECK (end_date IS NULL OR end_date >= start_date)
	)`,

	`CREATE TABLE IF NOT EXISTS request_messages (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		request_id UUID NOT NULL REFERENCES requests(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT clock_timestamp()
	)`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash VARCHAR(255) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS login_tokens (
		token_hash VARCHAR(255) PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_family_members_user_id ON family_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_family_invites_family_id ON family_invites(family_id)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_family_created ON requests(family_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_family_status_start ON requests(family_id, status, start_date)`,
	`CREATE INDEX IF NOT EXISTS idx_request_messages_request_created ON request_messages(request_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id)`,

	// Status may only leave 'pending', and only once.
	`CREATE OR REPLACE FUNCTION requests_terminal_guard() RETURNS trigger AS $$
	BEGIN
		IF OLD.status <> 'pending' AND NEW.status IS DISTINCT FROM OLD.status THEN
			RAISE EXCEPTION 'request % is already %', OLD.id, OLD.status;
		END IF;
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,

	`DROP TRIGGER IF EXISTS trg_requests_terminal_guard ON requests`,
	`CREATE TRIGGER trg_requests_terminal_guard
		BEFORE UPDATE ON requests
		FOR EACH ROW EXECUTE FUNCTION requests_terminal_guard()`,

	// Messages are append-only.
	`CREATE OR REPLACE FUNCTION request_messages_append_only() RETURNS trigger AS $$
	BEGIN
		RAISE EXCEPTION 'request messages are append-only';
	END;
	$$ LANGUAGE plpgsql`,

	`DROP TRIGGER IF EXISTS trg_request_messages_append_only ON request_messages`,
	`CREATE TRIGGER trg_request_messages_append_only
		BEFORE UPDATE ON request_messages
		FOR EACH ROW EXECUTE FUNCTION request_messages_append_only()`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
