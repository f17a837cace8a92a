package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitpot/splitpot/internal/domain"
)

// GroupRepository implements usecase.GroupRepository. Membership lives in a
// group_members join table; the member list on domain.Group is assembled
// with an aggregate on read.
type GroupRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(pool *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{pool: pool, retrier: NewRetrier()}
}

// Create inserts a group and its member rows in one transaction.
func (r *GroupRepository) Create(ctx context.Context, group *domain.Group) error {
	return r.retrier.Retry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		query := `
			INSERT INTO groups (id, name, owner_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.Exec(ctx, query,
			group.ID,
			group.Name,
			group.OwnerID,
			group.CreatedAt,
			group.UpdatedAt,
		); err != nil {
			return err
		}

		for _, member := range group.Members {
			if _, err := tx.Exec(ctx,
				`INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, $3)`,
				group.ID, member, group.CreatedAt,
			); err != nil {
				return err
			}
		}

		return tx.Commit(ctx)
	})
}

// GetByID retrieves a group with its member list.
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	query := `
		SELECT g.id, g.name, g.owner_id, g.created_at, g.updated_at,
		       COALESCE(array_agg(m.user_id ORDER BY m.joined_at, m.user_id)
		                FILTER (WHERE m.user_id IS NOT NULL), '{}')
		FROM groups g
		LEFT JOIN group_members m ON m.group_id = g.id
		WHERE g.id = $1
		GROUP BY g.id
	`

	var group domain.Group
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.OwnerID,
		&group.CreatedAt,
		&group.UpdatedAt,
		&group.Members,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	return &group, nil
}

// Update updates a group's mutable fields. Membership changes go through
// AddMember and RemoveMember.
func (r *GroupRepository) Update(ctx context.Context, group *domain.Group) error {
	query := `
		UPDATE groups
		SET name = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, group.ID, group.Name, group.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGroupNotFound
	}

	return nil
}

// Delete removes a group. Member, expense and settlement rows cascade.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGroupNotFound
	}

	return nil
}

// ListByMember retrieves every group a user belongs to.
func (r *GroupRepository) ListByMember(ctx context.Context, userID string) ([]*domain.Group, error) {
	query := `
		SELECT g.id, g.name, g.owner_id, g.created_at, g.updated_at,
		       COALESCE(array_agg(m.user_id ORDER BY m.joined_at, m.user_id)
		                FILTER (WHERE m.user_id IS NOT NULL), '{}')
		FROM groups g
		LEFT JOIN group_members m ON m.group_id = g.id
		WHERE g.id IN (SELECT group_id FROM group_members WHERE user_id = $1)
		GROUP BY g.id
		ORDER BY g.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*domain.Group
	for rows.Next() {
		var group domain.Group
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.OwnerID,
			&group.CreatedAt,
			&group.UpdatedAt,
			&group.Members,
		); err != nil {
			return nil, err
		}
		groups = append(groups, &group)
	}

	return groups, rows.Err()
}

// AddMember adds a user to a group.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID string, updatedAt time.Time) error {
	return r.retrier.Retry(ctx, func() error {
		return r.touchMembership(ctx, groupID, updatedAt,
			`INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, $3)
			 ON CONFLICT (group_id, user_id) DO NOTHING`,
			groupID, userID, updatedAt,
		)
	})
}

// RemoveMember removes a user from a group.
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID string, updatedAt time.Time) error {
	return r.retrier.Retry(ctx, func() error {
		return r.touchMembership(ctx, groupID, updatedAt,
			`DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`,
			groupID, userID,
		)
	})
}

// touchMembership runs a membership statement and bumps the group's
// updated_at in one transaction.
func (r *GroupRepository) touchMembership(ctx context.Context, groupID string, updatedAt time.Time, query string, args ...any) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `UPDATE groups SET updated_at = $2 WHERE id = $1`, groupID, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGroupNotFound
	}

	return tx.Commit(ctx)
}
