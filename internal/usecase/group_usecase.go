package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/splitpot/splitpot/internal/domain"
	"github.com/splitpot/splitpot/internal/infrastructure/metrics"
	"github.com/splitpot/splitpot/internal/resultcache"
)

// GroupUseCase handles group and membership business logic.
type GroupUseCase struct {
	groupRepo GroupRepository
	cache     *resultcache.Store
	notifier  ChangeNotifier
	idGen     IDGenerator
	logger    zerolog.Logger
}

// NewGroupUseCase creates a new GroupUseCase.
func NewGroupUseCase(
	groupRepo GroupRepository,
	cache *resultcache.Store,
	notifier ChangeNotifier,
	idGen IDGenerator,
	logger zerolog.Logger,
) *GroupUseCase {
	return &GroupUseCase{
		groupRepo: groupRepo,
		cache:     cache,
		notifier:  notifier,
		idGen:     idGen,
		logger:    logger,
	}
}

// CreateGroupInput represents input for creating a group.
type CreateGroupInput struct {
	Name    string
	OwnerID string
	Members []string
}

// CreateGroup creates a group. The owner is always a member.
func (uc *GroupUseCase) CreateGroup(ctx context.Context, input CreateGroupInput) (*domain.Group, error) {
	if err := domain.ValidateGroupName(input.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateMemberID(input.OwnerID); err != nil {
		return nil, err
	}

	members := []string{input.OwnerID}
	for _, m := range input.Members {
		if err := domain.ValidateMemberID(m); err != nil {
			return nil, err
		}
		if m != input.OwnerID && !contains(members, m) {
			members = append(members, m)
		}
	}

	now := time.Now().UTC()
	group := &domain.Group{
		ID:        uc.idGen.Generate(),
		Name:      input.Name,
		OwnerID:   input.OwnerID,
		Members:   members,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}

	// a fresh group invalidates its members' group lists the same way an
	// update does
	uc.publish(domain.ChangeEvent{
		Kind:       domain.EventGroupUpdated,
		GroupID:    group.ID,
		UserID:     group.OwnerID,
		RecordID:   group.ID,
		OccurredAt: now,
	})

	return group, nil
}

// GetGroup retrieves a group by ID.
func (uc *GroupUseCase) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	return uc.groupRepo.GetByID(ctx, id)
}

// RenameGroup changes a group's display name.
func (uc *GroupUseCase) RenameGroup(ctx context.Context, id, name string) (*domain.Group, error) {
	if err := domain.ValidateGroupName(name); err != nil {
		return nil, err
	}

	group, err := uc.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	group.Name = name
	group.UpdatedAt = now

	if err := uc.groupRepo.Update(ctx, group); err != nil {
		return nil, err
	}

	uc.publish(domain.ChangeEvent{
		Kind:       domain.EventGroupUpdated,
		GroupID:    group.ID,
		UserID:     group.OwnerID,
		RecordID:   group.ID,
		OccurredAt: now,
	})

	return group, nil
}

// DeleteGroup removes a group.
func (uc *GroupUseCase) DeleteGroup(ctx context.Context, id string) error {
	group, err := uc.groupRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.groupRepo.Delete(ctx, id); err != nil {
		return err
	}

	uc.publish(domain.ChangeEvent{
		Kind:       domain.EventGroupDeleted,
		GroupID:    group.ID,
		UserID:     group.OwnerID,
		RecordID:   group.ID,
		OccurredAt: time.Now().UTC(),
	})

	return nil
}

// AddMember adds a user to a group.
func (uc *GroupUseCase) AddMember(ctx context.Context, groupID, userID string) error {
	if err := domain.ValidateMemberID(userID); err != nil {
		return err
	}

	group, err := uc.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.HasMember(userID) {
		return fmt.Errorf("%w: %s", domain.ErrMemberExists, userID)
	}

	now := time.Now().UTC()
	if err := uc.groupRepo.AddMember(ctx, groupID, userID, now); err != nil {
		return err
	}

	uc.publish(domain.ChangeEvent{
		Kind:       domain.EventMemberAdded,
		GroupID:    groupID,
		UserID:     userID,
		OccurredAt: now,
	})

	return nil
}

// RemoveMember removes a user from a group. The owner cannot be removed.
func (uc *GroupUseCase) RemoveMember(ctx context.Context, groupID, userID string) error {
	group, err := uc.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(userID) {
		return fmt.Errorf("%w: %s", domain.ErrNotGroupMember, userID)
	}
	if userID == group.OwnerID {
		return fmt.Errorf("%w: cannot remove the owner", domain.ErrInvalidMemberID)
	}

	now := time.Now().UTC()
	if err := uc.groupRepo.RemoveMember(ctx, groupID, userID, now); err != nil {
		return err
	}

	uc.publish(domain.ChangeEvent{
		Kind:       domain.EventMemberRemoved,
		GroupID:    groupID,
		UserID:     userID,
		OccurredAt: now,
	})

	return nil
}

// ListUserGroups lists the groups a user belongs to, serving from the
// result cache when possible.
func (uc *GroupUseCase) ListUserGroups(ctx context.Context, userID string) ([]*domain.Group, error) {
	scope := domain.ScopeUserGroups(userID)
	if raw, ok := uc.cache.Get(ctx, scope); ok {
		var cached []*domain.Group
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	groups, err := uc.groupRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(groups); err == nil {
		uc.cache.Put(ctx, scope, raw)
	}
	return groups, nil
}

func (uc *GroupUseCase) publish(event domain.ChangeEvent) {
	metrics.EventsPublished.WithLabelValues(event.Kind).Inc()
	uc.notifier.Publish(event)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
