package stores_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egor/portfolioclient/models"
	"github.com/egor/portfolioclient/stores"
)

// recount — эталонная свёртка, с которой обязана совпадать сводка стора.
func recount(s *stores.AdminStore) models.AdminStats {
	projects := s.Projects()
	st := models.AdminStats{
		TotalUsers:    len(s.Users()),
		TotalProjects: len(projects),
		TotalReviews:  len(s.Reviews()),
	}
	for _, p := range projects {
		switch p.Status {
		case models.StatusPending:
			st.PendingProjects++
		case models.StatusInProgress:
			st.InProgressProjects++
		case models.StatusCompleted:
			st.CompletedProjects++
		}
	}
	return st
}

func TestDashboardStatsMatchFold(t *testing.T) {
	e := newEnv(t)
	admin := e.loginAs(adminEmail)

	admin.Admin.LoadDashboard(context.Background())

	require.Empty(t, admin.Admin.Err())
	require.NotEmpty(t, admin.Admin.Users())
	require.NotNil(t, admin.Admin.Stats())
	require.Equal(t, recount(admin.Admin), *admin.Admin.Stats())
}

func TestDashboardAllOrNothing(t *testing.T) {
	e := newEnv(t)
	admin := e.loginAs(adminEmail)
	ctx := context.Background()

	e.stub.ForceFailure(500)
	admin.Admin.LoadDashboard(ctx)
	e.stub.ForceFailure(0)

	// ни одна из трёх выборок не зафиксировалась
	require.NotEmpty(t, admin.Admin.Err())
	require.Empty(t, admin.Admin.Users())
	require.Empty(t, admin.Admin.Projects())
	require.Empty(t, admin.Admin.Reviews())
	require.Nil(t, admin.Admin.Stats())
	require.False(t, admin.Admin.IsLoading())
}

// Регрессия к классу ошибок «инкрементальные счётчики разъехались»:
// после смены статуса сводка обязана совпадать с пересчётом.
func TestUpdateStatusRecountsStats(t *testing.T) {
	e := newEnv(t)
	admin := e.loginAs(adminEmail)
	ctx := context.Background()

	admin.Admin.LoadDashboard(ctx)

	var pending *models.Project
	for _, p := range admin.Admin.Projects() {
		if p.Status == models.StatusPending {
			copied := p
			pending = &copied
			break
		}
	}
	require.NotNil(t, pending)

	before := *admin.Admin.Stats()
	require.True(t, admin.Admin.UpdateProjectStatus(ctx, pending.ID, models.StatusCompleted))

	st := *admin.Admin.Stats()
	require.Equal(t, recount(admin.Admin), st)
	require.Equal(t, before.PendingProjects-1, st.PendingProjects)
	require.Equal(t, before.CompletedProjects+1, st.CompletedProjects)

	// проект в том же снимке перешёл из одного производного среза в другой
	for _, p := range admin.Admin.PendingProjects() {
		require.NotEqual(t, pending.ID, p.ID)
	}
	found := false
	for _, p := range admin.Admin.CompletedProjects() {
		if p.ID == pending.ID {
			found = true
		}
	}
	require.True(t, found)
}

func TestDeleteReviewShrinksTotalByOne(t *testing.T) {
	e := newEnv(t)
	admin := e.loginAs(adminEmail)
	ctx := context.Background()

	admin.Admin.LoadDashboard(ctx)
	before := *admin.Admin.Stats()
	target := admin.Admin.Reviews()[0].ID

	require.True(t, admin.Admin.DeleteReview(ctx, target))

	st := *admin.Admin.Stats()
	require.Equal(t, before.TotalReviews-1, st.TotalReviews)
	require.Equal(t, recount(admin.Admin), st)
	for _, r := range admin.Admin.Reviews() {
		require.NotEqual(t, target, r.ID)
	}
}

func TestUpdateUserRole(t *testing.T) {
	e := newEnv(t)
	admin := e.loginAs(adminEmail)
	ctx := context.Background()

	admin.Admin.LoadUsers(ctx)
	var target *models.User
	for _, u := range admin.Admin.Users() {
		if u.Role == models.RoleUser {
			copied := u
			target = &copied
			break
		}
	}
	require.NotNil(t, target)

	require.True(t, admin.Admin.UpdateUserRole(ctx, target.ID, models.RoleModerator))

	for _, u := range admin.Admin.Users() {
		if u.ID == target.ID {
			require.Equal(t, models.RoleModerator, u.Role)
			return
		}
	}
	t.Fatalf("пользователь %d пропал из кэша", target.ID)
}

func TestUpdateProjectLinks(t *testing.T) {
	e := newEnv(t)
	admin := e.loginAs(adminEmail)
	ctx := context.Background()

	admin.Admin.LoadProjects(ctx)
	target := admin.Admin.Projects()[0].ID

	links := models.ProjectLinks{
		GithubRepoLink: "https://github.com/egor/coffee-landing",
		SpecLink:       "https://docs.example.com/spec",
	}
	require.True(t, admin.Admin.UpdateProjectLinks(ctx, target, links))

	for _, p := range admin.Admin.Projects() {
		if p.ID == target {
			require.Equal(t, links.GithubRepoLink, p.GithubRepoLink)
			require.Equal(t, links.SpecLink, p.SpecLink)
			return
		}
	}
	t.Fatalf("проект %d пропал из кэша", target)
}

func TestFailedStatusUpdateKeepsStats(t *testing.T) {
	e := newEnv(t)
	admin := e.loginAs(adminEmail)
	ctx := context.Background()

	admin.Admin.LoadDashboard(ctx)
	before := *admin.Admin.Stats()
	target := admin.Admin.Projects()[0].ID

	e.stub.ForceFailure(500)
	defer e.stub.ForceFailure(0)

	require.False(t, admin.Admin.UpdateProjectStatus(ctx, target, models.StatusCancelled))
	require.Equal(t, before, *admin.Admin.Stats(), "сводка не меняется при неудачной мутации")
}
