package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mveljko/codeclash-api/internal/database"
	"github.com/mveljko/codeclash-api/internal/models"
)

// LeaderboardService keeps per-contest standings in a redis sorted set, with
// submissions in postgres as the source of truth. Redis scores are always
// recomputed totals, never increments, so replayed judge callbacks cannot
// inflate anyone.
type LeaderboardService struct {
	db  *database.DB
	rdb *redis.Client
}

func NewLeaderboardService(db *database.DB, rdb *redis.Client) *LeaderboardService {
	return &LeaderboardService{db: db, rdb: rdb}
}

func contestKey(contestID uuid.UUID) string {
	return "leaderboard:contest:" + contestID.String()
}

// Record refreshes one user's standing after a scored submission. A user's
// contest total is the sum of their best score per problem.
func (s *LeaderboardService) Record(ctx context.Context, contestID, userID uuid.UUID) error {
	total, err := s.userTotal(ctx, contestID, userID)
	if err != nil {
		return err
	}

	if s.rdb == nil {
		return nil
	}

	err = s.rdb.ZAdd(ctx, contestKey(contestID), redis.Z{
		Score:  float64(total),
		Member: userID.String(),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to update leaderboard: %w", err)
	}
	return nil
}

// Top returns the highest ranked entries. Redis serves the ordering when it
// is available and warm; otherwise the standings are aggregated from
// postgres directly.
func (s *LeaderboardService) Top(ctx context.Context, contestID uuid.UUID, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	if s.rdb != nil {
		entries, err := s.topFromRedis(ctx, contestID, limit)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}
	}

	return s.topFromPostgres(ctx, contestID, limit)
}

// Rebuild recomputes a contest's whole sorted set from postgres. Used after
// a redis restart or when standings are suspect.
func (s *LeaderboardService) Rebuild(ctx context.Context, contestID uuid.UUID) error {
	if s.rdb == nil {
		return nil
	}

	entries, err := s.topFromPostgres(ctx, contestID, 0)
	if err != nil {
		return err
	}

	key := contestKey(contestID)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	for _, e := range entries {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(e.Score), Member: e.UserID.String()})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to rebuild leaderboard: %w", err)
	}
	return nil
}

func (s *LeaderboardService) userTotal(ctx context.Context, contestID, userID uuid.UUID) (int, error) {
	var total int
	err := s.db.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(best), 0) FROM (
			SELECT MAX(score) AS best
			FROM submissions
			WHERE contest_id = $1 AND user_id = $2 AND status = $3
			GROUP BY problem_id
		) per_problem
	`, contestID, userID, models.SubmissionAccepted).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *LeaderboardService) topFromRedis(ctx context.Context, contestID uuid.UUID, limit int) ([]models.LeaderboardEntry, error) {
	zs, err := s.rdb.ZRevRangeWithScores(ctx, contestKey(contestID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(zs) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(zs))
	scores := make(map[uuid.UUID]int, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(member)
		if err != nil {
			continue
		}
		ids = append(ids, id)
		scores[id] = int(z.Score)
	}

	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(ids))
	for i, id := range ids {
		user, ok := users[id]
		if !ok {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{
			Rank:      i + 1,
			UserID:    id,
			Name:      user.Name,
			AvatarURL: user.AvatarURL,
			Score:     scores[id],
		})
	}
	return entries, nil
}

// topFromPostgres aggregates standings from submissions. limit 0 means all.
func (s *LeaderboardService) topFromPostgres(ctx context.Context, contestID uuid.UUID, limit int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT sub.user_id, u.name, u.avatar_url, SUM(sub.best) AS total
		FROM (
			SELECT user_id, problem_id, MAX(score) AS best
			FROM submissions
			WHERE contest_id = $1 AND status = $2
			GROUP BY user_id, problem_id
		) sub
		JOIN users u ON sub.user_id = u.id
		GROUP BY sub.user_id, u.name, u.avatar_url
		ORDER BY total DESC, u.name
	`
	args := []any{contestID, models.SubmissionAccepted}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	rank := 0
	for rows.Next() {
		var entry models.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Name, &entry.AvatarURL, &entry.Score); err != nil {
			return nil, err
		}
		rank++
		entry.Rank = rank
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *LeaderboardService) usersByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]models.User{}, nil
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, name, avatar_url FROM users WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make(map[uuid.UUID]models.User, len(ids))
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.AvatarURL); err != nil {
			return nil, err
		}
		users[user.ID] = user
	}
	return users, rows.Err()
}
