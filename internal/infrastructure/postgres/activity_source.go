package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joacominatel/rewards/internal/domain"
)

// timestamps are selected as text. gating parses them row by row.

const profileQuery = `
	SELECT id, welcome_bonus_claimed, wallet_bonus_claimed, points
	FROM profiles
	WHERE id = $1
`

const postsQuery = `
	SELECT id, user_id, COALESCE(content, ''), images, COALESCE(video_url, ''),
		COALESCE(post_type, 'post'), created_at::text
	FROM posts
	WHERE user_id = $1
	ORDER BY created_at, id
`

const productsQuery = `
	SELECT id, seller_id, COALESCE(description, ''), images, COALESCE(video_url, ''),
		'product', created_at::text
	FROM products
	WHERE seller_id = $1
	ORDER BY created_at, id
`

const livestreamsQuery = `
	SELECT id, host_id,
		COALESCE(EXTRACT(EPOCH FROM (ended_at - started_at)), 0)::int,
		created_at::text
	FROM livestreams
	WHERE host_id = $1
	ORDER BY created_at, id
`

// owned lists every piece of content the user could receive interactions on.
const ownedContent = `
	WITH owned AS (
		SELECT id, 'post' AS kind FROM posts WHERE user_id = $1
		UNION ALL
		SELECT id, 'product' FROM products WHERE seller_id = $1
		UNION ALL
		SELECT id, 'livestream' FROM livestreams WHERE host_id = $1
	)
`

const likesQuery = ownedContent + `
	SELECT l.id, l.user_id, l.target_id, l.target_type, '', l.created_at::text
	FROM likes l
	JOIN owned o ON o.id = l.target_id AND o.kind = l.target_type
	WHERE l.user_id IS NOT NULL
	ORDER BY l.created_at, l.id
`

const commentsQuery = ownedContent + `
	SELECT c.id, c.user_id, c.target_id, c.target_type, COALESCE(c.content, ''), c.created_at::text
	FROM comments c
	JOIN owned o ON o.id = c.target_id AND o.kind = c.target_type
	WHERE c.user_id IS NOT NULL
	ORDER BY c.created_at, c.id
`

const sharesQuery = ownedContent + `
	SELECT s.id, s.user_id, s.target_id, s.target_type, '', s.created_at::text
	FROM shares s
	JOIN owned o ON o.id = s.target_id AND o.kind = s.target_type
	WHERE s.user_id IS NOT NULL
	ORDER BY s.created_at, s.id
`

// friendships are stored once per pair; the friend is whichever side is not the user.
const friendshipsQuery = `
	SELECT id,
		CASE WHEN requester_id = $1 THEN addressee_id ELSE requester_id END,
		COALESCE(accepted_at, created_at)::text
	FROM friendships
	WHERE status = 'accepted' AND (requester_id = $1 OR addressee_id = $1)
	ORDER BY COALESCE(accepted_at, created_at), id
`

// ActivitySource implements domain.ActivitySource over the application database.
// it only ever reads.
type ActivitySource struct {
	pool *pgxpool.Pool
}

// NewActivitySource creates a new ActivitySource.
func NewActivitySource(pool *pgxpool.Pool) *ActivitySource {
	return &ActivitySource{pool: pool}
}

// FetchUserActivity reads the user's profile and every reward-relevant record
// from a single consistent snapshot.
func (s *ActivitySource) FetchUserActivity(ctx context.Context, userID domain.UserID) (*domain.UserActivity, error) {
	var activity *domain.UserActivity

	err := ReadSnapshot(ctx, s.pool, func(q Querier) error {
		var err error
		activity, err = readUserActivity(ctx, q, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return activity, nil
}

func readUserActivity(ctx context.Context, q Querier, userID domain.UserID) (*domain.UserActivity, error) {
	id := userID.UUID()

	profile, err := scanProfile(q.QueryRow(ctx, profileQuery, id))
	if err != nil {
		return nil, err
	}
	activity := &domain.UserActivity{Profile: profile}

	if activity.Posts, err = queryContent(ctx, q, postsQuery, id); err != nil {
		return nil, fmt.Errorf("reading posts: %w", err)
	}
	if activity.Products, err = queryContent(ctx, q, productsQuery, id); err != nil {
		return nil, fmt.Errorf("reading products: %w", err)
	}
	if activity.Livestreams, err = queryLivestreams(ctx, q, id); err != nil {
		return nil, fmt.Errorf("reading livestreams: %w", err)
	}
	if activity.Likes, err = queryInteractions(ctx, q, likesQuery, id); err != nil {
		return nil, fmt.Errorf("reading likes: %w", err)
	}
	if activity.Comments, err = queryInteractions(ctx, q, commentsQuery, id); err != nil {
		return nil, fmt.Errorf("reading comments: %w", err)
	}
	if activity.Shares, err = queryInteractions(ctx, q, sharesQuery, id); err != nil {
		return nil, fmt.Errorf("reading shares: %w", err)
	}
	if activity.Friendships, err = queryFriendships(ctx, q, id); err != nil {
		return nil, fmt.Errorf("reading friendships: %w", err)
	}

	return activity, nil
}

func scanProfile(row pgx.Row) (domain.UserProfile, error) {
	var (
		id      uuid.UUID
		welcome bool
		wallet  bool
		points  *int64
	)

	err := row.Scan(&id, &welcome, &wallet, &points)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProfile{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("scanning profile: %w", err)
	}

	profile := domain.UserProfile{
		ID:                  domain.UserIDFromUUID(id),
		WelcomeBonusClaimed: welcome,
		WalletBonusClaimed:  wallet,
	}
	if points != nil {
		live := domain.Points(*points)
		profile.LiveBalance = &live
	}
	return profile, nil
}

func queryContent(ctx context.Context, q Querier, query string, userID uuid.UUID) ([]domain.ContentRecord, error) {
	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ContentRecord, error) {
		var (
			id, author uuid.UUID
			r          domain.ContentRecord
		)
		if err := row.Scan(&id, &author, &r.Content, &r.Images, &r.VideoURL, &r.PostType, &r.CreatedAt); err != nil {
			return r, err
		}
		r.ID = domain.EventIDFromUUID(id)
		r.AuthorID = domain.UserIDFromUUID(author)
		return r, nil
	})
}

func queryLivestreams(ctx context.Context, q Querier, userID uuid.UUID) ([]domain.LivestreamRecord, error) {
	rows, err := q.Query(ctx, livestreamsQuery, userID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LivestreamRecord, error) {
		var (
			id, host uuid.UUID
			r        domain.LivestreamRecord
		)
		if err := row.Scan(&id, &host, &r.DurationSeconds, &r.CreatedAt); err != nil {
			return r, err
		}
		r.ID = domain.EventIDFromUUID(id)
		r.HostID = domain.UserIDFromUUID(host)
		return r, nil
	})
}

func queryInteractions(ctx context.Context, q Querier, query string, userID uuid.UUID) ([]domain.InteractionRecord, error) {
	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.InteractionRecord, error) {
		var (
			id, actor, target uuid.UUID
			targetType        string
			r                 domain.InteractionRecord
		)
		if err := row.Scan(&id, &actor, &target, &targetType, &r.Content, &r.CreatedAt); err != nil {
			return r, err
		}
		source, err := domain.ParseContentSource(targetType)
		if err != nil {
			return r, err
		}
		r.ID = domain.EventIDFromUUID(id)
		r.ActorID = domain.UserIDFromUUID(actor)
		r.TargetID = domain.EventIDFromUUID(target)
		r.Source = source
		return r, nil
	})
}

func queryFriendships(ctx context.Context, q Querier, userID uuid.UUID) ([]domain.FriendshipRecord, error) {
	rows, err := q.Query(ctx, friendshipsQuery, userID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.FriendshipRecord, error) {
		var (
			id, friend uuid.UUID
			r          domain.FriendshipRecord
		)
		if err := row.Scan(&id, &friend, &r.CreatedAt); err != nil {
			return r, err
		}
		r.ID = domain.EventIDFromUUID(id)
		r.FriendID = domain.UserIDFromUUID(friend)
		return r, nil
	})
}
