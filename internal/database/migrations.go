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
		name VARCHAR(255) NOT NULL,
		avatar_url VARCHAR(500),
		provider VARCHAR(50) NOT NULL,
		provider_id VARCHAR(255) NOT NULL,
		global_role VARCHAR(50) NOT NULL DEFAULT 'user',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(provider, provider_id)
	)`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash VARCHAR(255) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS contests (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		title VARCHAR(255) NOT NULL,
		description TEXT,
		type VARCHAR(20) NOT NULL DEFAULT 'individual',
		starts_at TIMESTAMP WITH TIME ZONE NOT NULL,
		ends_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_by UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CHECK (starts_at < ends_at),
		CHECK (type IN ('individual', 'team'))
	)`,

	`CREATE TABLE IF NOT EXISTS problems (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		title VARCHAR(255) NOT NULL,
		statement TEXT NOT NULL,
		difficulty VARCHAR(20) NOT NULL DEFAULT 'medium',
		test_cases JSONB NOT NULL DEFAULT '[]',
		created_by UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS contest_problems (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contest_id UUID NOT NULL REFERENCES contests(id) ON DELETE CASCADE,
		problem_id UUID NOT NULL REFERENCES problems(id) ON DELETE CASCADE,
		position INTEGER NOT NULL DEFAULT 0,
		UNIQUE(contest_id, problem_id)
	)`,

	`CREATE TABLE IF NOT EXISTS teams (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		code VARCHAR(12) NOT NULL UNIQUE,
		contest_id UUID NOT NULL REFERENCES contests(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status VARCHAR(20) NOT NULL DEFAULT 'waiting',
		started_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CHECK (status IN ('waiting', 'started', 'completed'))
	)`,

	// contest_id is denormalized onto team_members so the one-team-per-contest
	// rule is backed by a unique index, not just the in-transaction check.
	`CREATE TABLE IF NOT EXISTS team_members (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		contest_id UUID NOT NULL REFERENCES contests(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role VARCHAR(50) NOT NULL DEFAULT 'member',
		ready BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(team_id, user_id),
		UNIQUE(contest_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS contest_participants (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contest_id UUID NOT NULL REFERENCES contests(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(contest_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS submissions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contest_id UUID REFERENCES contests(id) ON DELETE CASCADE,
		problem_id UUID NOT NULL REFERENCES problems(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		team_id UUID REFERENCES teams(id) ON DELETE SET NULL,
		language VARCHAR(50) NOT NULL,
		code TEXT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'queued',
		score INTEGER NOT NULL DEFAULT 0,
		verdict JSONB,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CHECK (status IN ('queued', 'running', 'accepted', 'rejected', 'error'))
	)`,

	// Credentials the external judge uses to post results back.
	`CREATE TABLE IF NOT EXISTS judge_api_keys (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		key_hash VARCHAR(255) NOT NULL UNIQUE,
		key_prefix VARCHAR(20) NOT NULL,
		created_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at TIMESTAMP WITH TIME ZONE,
		revoked_at TIMESTAMP WITH TIME ZONE,
		last_used_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_contests_starts_at ON contests(starts_at)`,
	`CREATE INDEX IF NOT EXISTS idx_contest_problems_contest_id ON contest_problems(contest_id)`,
	`CREATE INDEX IF NOT EXISTS idx_teams_contest_id ON teams(contest_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_members_team_id ON team_members(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_members_user_id ON team_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_contest_participants_contest_id ON contest_participants(contest_id)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_contest_id ON submissions(contest_id)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_user_id ON submissions(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_judge_api_keys_key_hash ON judge_api_keys(key_hash)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
