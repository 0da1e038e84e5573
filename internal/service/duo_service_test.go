package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/duogate/internal/domain/twofactor"
	apperrors "github.com/target/duogate/internal/errors"
	"github.com/target/duogate/internal/mocks"
	"github.com/target/duogate/internal/ports"
)

type duoServiceFixture struct {
	*flowFixture
	users *mocks.MockUserRepository
	orgs  *mocks.MockOrganizationRepository
	svc   *DuoService
}

func newDuoServiceFixture(t *testing.T) *duoServiceFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := newFlowFixture(t, fixtureOptions{})
	users := mocks.NewMockUserRepository(ctrl)
	orgs := mocks.NewMockOrganizationRepository(ctrl)
	return &duoServiceFixture{
		flowFixture: f,
		users:       users,
		orgs:        orgs,
		svc: NewDuoService(DuoServiceOptions{
			Repos:        DuoRepositories{Users: users, Organizations: orgs},
			User:         f.user,
			Organization: f.org,
		}),
	}
}

func TestDuoService_UserFlow(t *testing.T) {
	f := newDuoServiceFixture(t)
	f.expectHealthyClient()
	user := premiumUser("user-a", "a@example.com")
	f.users.EXPECT().GetByID(gomock.Any(), "user-a").Return(user, nil).Times(3)

	ctx := context.Background()
	ok, err := f.svc.UserAvailable(ctx, "user-a")
	require.NoError(t, err)
	assert.True(t, ok)

	gen, err := f.svc.UserAuthorize(ctx, "user-a")
	require.NoError(t, err)
	require.True(t, gen.OK())

	f.client.EXPECT().ExchangeCode(gomock.Any(), "code123", "a@example.com").
		Return(&ports.ExchangeResult{Verdict: twofactor.VerdictAllow}, nil)
	res, err := f.svc.UserValidate(ctx, "user-a", "code123|"+stateFromURL(t, gen.RedirectURL))
	require.NoError(t, err)
	assert.True(t, res.OK())
}

func TestDuoService_UnknownUser(t *testing.T) {
	f := newDuoServiceFixture(t)
	f.users.EXPECT().GetByID(gomock.Any(), "ghost").Return(nil, apperrors.NotFound("user not found")).Times(3)

	ctx := context.Background()
	_, err := f.svc.UserAvailable(ctx, "ghost")
	assert.True(t, apperrors.IsNotFound(err))
	_, err = f.svc.UserAuthorize(ctx, "ghost")
	assert.True(t, apperrors.IsNotFound(err))
	_, err = f.svc.UserValidate(ctx, "ghost", "a|b")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDuoService_OrganizationFlow(t *testing.T) {
	f := newDuoServiceFixture(t)
	f.expectHealthyClient()
	member := &twofactor.User{ID: "member-1", Email: "m@example.com"}
	org := duoOrganization()
	f.users.EXPECT().GetByID(gomock.Any(), "member-1").Return(member, nil).AnyTimes()
	f.orgs.EXPECT().GetForMember(gomock.Any(), "org-1", "member-1").Return(org, nil).AnyTimes()

	ctx := context.Background()
	ok, err := f.svc.OrganizationAvailable(ctx, "org-1", "member-1")
	require.NoError(t, err)
	assert.True(t, ok)

	gen, err := f.svc.OrganizationAuthorize(ctx, "org-1", "member-1")
	require.NoError(t, err)
	require.True(t, gen.OK())

	f.client.EXPECT().ExchangeCode(gomock.Any(), "code123", "m@example.com").
		Return(&ports.ExchangeResult{Verdict: "deny"}, nil)
	res, err := f.svc.OrganizationValidate(ctx, "org-1", "member-1", "code123|"+stateFromURL(t, gen.RedirectURL))
	require.NoError(t, err)
	assert.Equal(t, twofactor.StatusDenied, res.Status)
}

func TestDuoService_NotAMember(t *testing.T) {
	f := newDuoServiceFixture(t)
	f.users.EXPECT().GetByID(gomock.Any(), "user-a").Return(premiumUser("user-a", "a@example.com"), nil)
	f.orgs.EXPECT().GetForMember(gomock.Any(), "org-2", "user-a").Return(nil, apperrors.NotFound("organization not found"))

	_, err := f.svc.OrganizationAuthorize(context.Background(), "org-2", "user-a")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestNewDuoService_Panics(t *testing.T) {
	assert.Panics(t, func() { NewDuoService(DuoServiceOptions{}) })
}
