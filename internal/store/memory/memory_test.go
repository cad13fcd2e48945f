package memory

import (
	"context"
	"testing"
	"time"

	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/TailoredAgents/joslyn-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestOrganizationStoreUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewOrganizationStore()

	orgID := uuid.New()
	err := s.Upsert(ctx, &models.Organization{OrgID: orgID, Name: "Lincoln Elementary"})
	require.NoError(t, err)

	org, err := s.Get(ctx, orgID)
	require.NoError(t, err)
	require.Equal(t, "Lincoln Elementary", org.Name)
	require.False(t, org.CreatedAt.IsZero())

	// Upsert again with a new name keeps the original CreatedAt.
	err = s.Upsert(ctx, &models.Organization{OrgID: orgID, Name: "Lincoln Elementary School"})
	require.NoError(t, err)

	updated, err := s.Get(ctx, orgID)
	require.NoError(t, err)
	require.Equal(t, "Lincoln Elementary School", updated.Name)
	require.Equal(t, org.CreatedAt, updated.CreatedAt)
}

func TestOrganizationStoreGetNotFound(t *testing.T) {
	s := NewOrganizationStore()

	_, err := s.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, store.ErrOrganizationNotFound)
}

func TestMembershipStoreUpsertReplacesRole(t *testing.T) {
	ctx := context.Background()
	s := NewMembershipStore()

	orgID := uuid.New()
	userID := uuid.New()

	err := s.Upsert(ctx, &models.Membership{OrgID: orgID, UserID: userID, Role: models.RoleMember})
	require.NoError(t, err)

	err = s.Upsert(ctx, &models.Membership{OrgID: orgID, UserID: userID, Role: models.RoleAdmin})
	require.NoError(t, err)

	m, err := s.Get(ctx, orgID, userID)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, m.Role)

	// A second org for the same user is a distinct membership.
	otherOrg := uuid.New()
	_, err = s.Get(ctx, otherOrg, userID)
	require.ErrorIs(t, err, store.ErrMembershipNotFound)
}

func TestEventStoreAppendAssignsIdentity(t *testing.T) {
	ctx := context.Background()
	s := NewEventStore()

	orgID := uuid.New()
	event := &models.Event{
		OrgID:   &orgID,
		Type:    models.EventTypeMeetingConsent,
		Payload: models.ConsentPayload{ChildID: "child-1", Consent: true},
	}

	err := s.Append(ctx, event)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, event.EventID)
	require.False(t, event.CreatedAt.IsZero())

	// Mutating the event after append must not affect the stored copy.
	event.Type = models.EventTypeUserFeedback

	counts, err := s.CountByType(ctx, &orgID, time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), counts[models.EventTypeMeetingConsent])
	require.Zero(t, counts[models.EventTypeUserFeedback])
}

func TestEventStoreCountByTypeScopesToOrg(t *testing.T) {
	ctx := context.Background()
	s := NewEventStore()

	orgA := uuid.New()
	orgB := uuid.New()

	for range 3 {
		err := s.Append(ctx, &models.Event{
			OrgID:   &orgA,
			Type:    models.EventTypeMeetingConsent,
			Payload: models.ConsentPayload{ChildID: "child-1", Consent: true},
		})
		require.NoError(t, err)
	}

	err := s.Append(ctx, &models.Event{
		OrgID:   &orgB,
		Type:    models.EventTypeUserFeedback,
		Payload: models.FeedbackPayload{Submission: map[string]any{"rating": 5}},
	})
	require.NoError(t, err)

	counts, err := s.CountByType(ctx, &orgA, time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(3), counts[models.EventTypeMeetingConsent])
	require.NotContains(t, counts, models.EventTypeUserFeedback)

	// nil orgID counts across all organizations.
	all, err := s.CountByType(ctx, nil, time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(3), all[models.EventTypeMeetingConsent])
	require.Equal(t, int64(1), all[models.EventTypeUserFeedback])
}

func TestUsageStoreSummarize(t *testing.T) {
	ctx := context.Background()
	s := NewUsageStore()

	orgID := uuid.New()

	err := s.Record(ctx, &models.UsageRecord{
		OrgID:        &orgID,
		Model:        "gpt-5-mini",
		InputTokens:  1000,
		OutputTokens: 500,
		CostCents:    2000,
	})
	require.NoError(t, err)

	err = s.Record(ctx, &models.UsageRecord{
		OrgID:        &orgID,
		Model:        "gpt-5",
		InputTokens:  200,
		OutputTokens: 100,
		CachedTokens: 50,
		CostCents:    300,
	})
	require.NoError(t, err)

	summary, err := s.Summarize(ctx, &orgID, time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(2), summary.Records)
	require.Equal(t, int64(1200), summary.InputTokens)
	require.Equal(t, int64(600), summary.OutputTokens)
	require.Equal(t, int64(50), summary.CachedTokens)
	require.Equal(t, int64(2300), summary.CostCents)

	otherOrg := uuid.New()
	empty, err := s.Summarize(ctx, &otherOrg, time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Zero(t, empty.Records)
	require.Zero(t, empty.CostCents)
}

func TestInviteStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewInviteStore()

	invite := &models.Invite{
		InviteID: uuid.New(),
		OrgID:    uuid.New(),
		Email:    "parent@example.com",
		Role:     models.RoleParent,
		Token:    "tok-abc123",
	}

	err := s.Create(ctx, invite)
	require.NoError(t, err)

	got, err := s.GetByToken(ctx, "tok-abc123")
	require.NoError(t, err)
	require.Equal(t, invite.InviteID, got.InviteID)
	require.False(t, got.Accepted())

	err = s.MarkAccepted(ctx, invite.InviteID)
	require.NoError(t, err)

	accepted, err := s.GetByToken(ctx, "tok-abc123")
	require.NoError(t, err)
	require.True(t, accepted.Accepted())
	firstAccepted := *accepted.AcceptedAt

	// Accepting again keeps the original timestamp.
	err = s.MarkAccepted(ctx, invite.InviteID)
	require.NoError(t, err)

	again, err := s.GetByToken(ctx, "tok-abc123")
	require.NoError(t, err)
	require.Equal(t, firstAccepted, *again.AcceptedAt)

	_, err = s.GetByToken(ctx, "tok-missing")
	require.ErrorIs(t, err, store.ErrInviteNotFound)
}
