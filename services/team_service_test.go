package services

import (
	"context"
	"testing"

	"github.com/goodplay/goodplay-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type teamFixture struct {
	svc      TeamService
	teamRepo *fakeTeamRepo
	userRepo *fakeUserRepo
}

func newTeamFixture(t *testing.T) *teamFixture {
	t.Helper()
	teamRepo := newFakeTeamRepo()
	userRepo := newFakeUserRepo()
	return &teamFixture{
		svc:      NewTeamService(teamRepo, userRepo, nil),
		teamRepo: teamRepo,
		userRepo: userRepo,
	}
}

func (f *teamFixture) createUser(t *testing.T) *models.User {
	t.Helper()
	user := &models.User{
		Nickname: "player-" + primitive.NewObjectID().Hex(),
		Email:    primitive.NewObjectID().Hex() + "@example.com",
		Role:     models.RoleUser,
	}
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user
}

func TestCreateTeam(t *testing.T) {
	f := newTeamFixture(t)
	creator := f.createUser(t)

	_, err := f.svc.CreateTeam(context.Background(), CreateTeamInput{CreatorID: creator.ID})
	assert.ErrorIs(t, err, ErrTeamNameRequired)

	team, err := f.svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:      "green-guardians",
		CreatorID: creator.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTeamMaxMembers, team.MaxMembers)
	assert.True(t, team.Recruiting)
	assert.Equal(t, 1, team.MemberCount)

	// The creator is linked to the team and cannot found another one.
	updated, err := f.userRepo.GetByID(context.Background(), creator.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.TeamID)
	assert.Equal(t, team.ID, *updated.TeamID)

	_, err = f.svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:      "second-team",
		CreatorID: creator.ID,
	})
	assert.ErrorIs(t, err, ErrUserAlreadyInTeam)

	other := f.createUser(t)
	_, err = f.svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:      "green-guardians",
		CreatorID: other.ID,
	})
	assert.ErrorIs(t, err, ErrTeamNameConflict)
}

func TestJoinTeamRules(t *testing.T) {
	f := newTeamFixture(t)
	creator := f.createUser(t)

	recruiting := false
	closed, err := f.svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:       "closed-team",
		CreatorID:  creator.ID,
		Recruiting: &recruiting,
	})
	require.NoError(t, err)

	joiner := f.createUser(t)
	_, err = f.svc.JoinTeam(context.Background(), closed.ID, joiner.ID)
	assert.ErrorIs(t, err, ErrTeamNotRecruiting)

	_, err = f.svc.JoinTeam(context.Background(), primitive.NewObjectID(), joiner.ID)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestJoinTeamFull(t *testing.T) {
	f := newTeamFixture(t)
	creator := f.createUser(t)

	team, err := f.svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:       "duo",
		MaxMembers: 2,
		CreatorID:  creator.ID,
	})
	require.NoError(t, err)

	second := f.createUser(t)
	_, err = f.svc.JoinTeam(context.Background(), team.ID, second.ID)
	require.NoError(t, err)

	third := f.createUser(t)
	_, err = f.svc.JoinTeam(context.Background(), team.ID, third.ID)
	assert.ErrorIs(t, err, ErrTeamFull)
}

func TestJoinTeamSingleMembership(t *testing.T) {
	f := newTeamFixture(t)
	creator := f.createUser(t)
	team, err := f.svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:      "first",
		CreatorID: creator.ID,
	})
	require.NoError(t, err)

	otherCreator := f.createUser(t)
	other, err := f.svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:      "second",
		CreatorID: otherCreator.ID,
	})
	require.NoError(t, err)

	joiner := f.createUser(t)
	_, err = f.svc.JoinTeam(context.Background(), team.ID, joiner.ID)
	require.NoError(t, err)

	_, err = f.svc.JoinTeam(context.Background(), other.ID, joiner.ID)
	assert.ErrorIs(t, err, ErrUserAlreadyInTeam)
}

func TestLeaveTeam(t *testing.T) {
	f := newTeamFixture(t)
	creator := f.createUser(t)
	team, err := f.svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:      "leavers",
		CreatorID: creator.ID,
	})
	require.NoError(t, err)

	joiner := f.createUser(t)
	_, err = f.svc.JoinTeam(context.Background(), team.ID, joiner.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.LeaveTeam(context.Background(), team.ID, joiner.ID))

	updated, err := f.userRepo.GetByID(context.Background(), joiner.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.TeamID)

	// Leaving twice means the membership is gone.
	err = f.svc.LeaveTeam(context.Background(), team.ID, joiner.ID)
	assert.ErrorIs(t, err, ErrUserNotInTeam)
}

func TestContribute(t *testing.T) {
	f := newTeamFixture(t)
	creator := f.createUser(t)
	team, err := f.svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:      "scorers",
		CreatorID: creator.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.Contribute(context.Background(), team.ID, creator.ID, ContributeInput{Points: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	outsider := f.createUser(t)
	_, err = f.svc.Contribute(context.Background(), team.ID, outsider.ID, ContributeInput{Points: 50})
	assert.ErrorIs(t, err, ErrUserNotInTeam)

	updated, err := f.svc.Contribute(context.Background(), team.ID, creator.ID, ContributeInput{Points: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(50), updated.TotalScore)

	member, err := f.teamRepo.GetMember(context.Background(), team.ID, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), member.Contribution)
}

func TestGetTeamByIDIncludesMembers(t *testing.T) {
	f := newTeamFixture(t)
	creator := f.createUser(t)
	team, err := f.svc.CreateTeam(context.Background(), CreateTeamInput{
		Name:      "visible",
		CreatorID: creator.ID,
	})
	require.NoError(t, err)

	loaded, err := f.svc.GetTeamByID(context.Background(), team.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Members, 1)
	assert.Equal(t, creator.ID, loaded.Members[0].UserID)
}
