package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SENODROOM/PublicBoard-Backend/internal/apperror"
	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository/memstore"
)

func newIssueFixture(t *testing.T) (*IssueService, *memstore.Store, *model.User, *model.User) {
	t.Helper()
	store := memstore.NewEmpty()
	authSvc := newTestAuthService(t, store, "")
	reporter := mustRegister(t, authSvc, "Reporter", "reporter@example.com", "password1")
	admin := makeAdmin(t, store, mustRegister(t, authSvc, "Boss", "boss@example.com", "password1"))
	return NewIssueService(store, testLogger()), store, reporter, admin
}

func fileIssue(t *testing.T, svc *IssueService, principal *model.User) *model.Issue {
	t.Helper()
	issue, err := svc.Create(context.Background(), principal, CreateIssueInput{
		Title:        "Leaking hydrant on 5th",
		Description:  "Water has been pooling at the corner for two days.",
		Category:     model.CategoryInfrastructure,
		Location:     "5th and Pine",
		ReporterName: "Reporter",
	})
	require.NoError(t, err)
	return issue
}

func TestIssueCreate_DefaultsOpenAndStampsReporter(t *testing.T) {
	svc, _, reporter, _ := newIssueFixture(t)

	issue := fileIssue(t, svc, reporter)

	assert.Equal(t, model.StatusOpen, issue.Status)
	assert.Equal(t, reporter.ID, issue.Reporter.UserID)
	assert.Equal(t, "reporter@example.com", issue.Reporter.Email)
	assert.NotEmpty(t, issue.ID)
	assert.Zero(t, issue.SupportCount)
}

func TestIssueCreate_AnonymousAllowed(t *testing.T) {
	svc, _, _, _ := newIssueFixture(t)

	issue, err := svc.Create(context.Background(), nil, CreateIssueInput{
		Title:        "Fallen branch blocking the bike lane",
		Description:  "Large branch across the lane near the bridge.",
		Category:     model.CategoryOther,
		ReporterName: "Passer By",
	})
	require.NoError(t, err)
	assert.Empty(t, issue.Reporter.UserID)
}

func TestIssueCreate_InvalidCategoryPersistsNothing(t *testing.T) {
	svc, store, reporter, _ := newIssueFixture(t)

	_, err := svc.Create(context.Background(), reporter, CreateIssueInput{
		Title:        "Valid title",
		Description:  "Valid description",
		Category:     "Nonexistent",
		ReporterName: "Reporter",
	})
	require.ErrorIs(t, err, apperror.ErrValidation)

	all, err := store.Find(context.Background(), repository.Filter{}, repository.DefaultSort)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateStatus_ReporterCanMoveOwnIssue(t *testing.T) {
	svc, _, reporter, _ := newIssueFixture(t)
	issue := fileIssue(t, svc, reporter)

	updated, err := svc.UpdateStatus(context.Background(), reporter, issue.ID, model.StatusInProgress, "started looking into it")
	require.NoError(t, err)

	assert.Equal(t, model.StatusInProgress, updated.Status)
	require.Len(t, updated.Updates, 1)
	assert.Equal(t, "Reporter", updated.Updates[0].UpdatedBy)
	assert.Nil(t, updated.ResolvedAt)
}

func TestUpdateStatus_ForbiddenLeavesIssueUnchanged(t *testing.T) {
	svc, store, reporter, _ := newIssueFixture(t)
	issue := fileIssue(t, svc, reporter)

	authSvc := newTestAuthService(t, store, "")
	stranger := mustRegister(t, authSvc, "Stranger", "stranger@example.com", "password1")

	_, err := svc.UpdateStatus(context.Background(), stranger, issue.ID, model.StatusResolved, "drive-by resolve")
	require.ErrorIs(t, err, apperror.ErrForbidden)

	got, err := svc.Get(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, got.Status)
	assert.Empty(t, got.Updates)
	assert.Nil(t, got.ResolvedAt)
}

func TestUpdateStatus_AdminAuthorSuffixAndResolvedAt(t *testing.T) {
	svc, _, reporter, admin := newIssueFixture(t)
	issue := fileIssue(t, svc, reporter)

	updated, err := svc.UpdateStatus(context.Background(), admin, issue.ID, model.StatusResolved, "fixed by city crew")
	require.NoError(t, err)

	require.NotNil(t, updated.ResolvedAt)
	require.Len(t, updated.Updates, 1)
	assert.Equal(t, "Boss (Admin)", updated.Updates[0].UpdatedBy)

	// moving away from Resolved keeps the stamp
	reopened, err := svc.UpdateStatus(context.Background(), admin, issue.ID, model.StatusOpen, "")
	require.NoError(t, err)
	assert.NotNil(t, reopened.ResolvedAt)

	// re-entering Resolved refreshes it
	resolvedAgain, err := svc.UpdateStatus(context.Background(), admin, issue.ID, model.StatusResolved, "")
	require.NoError(t, err)
	require.NotNil(t, resolvedAgain.ResolvedAt)
	assert.False(t, resolvedAgain.ResolvedAt.Before(*reopened.ResolvedAt))
}

func TestUpdateStatus_InvalidStatusRejected(t *testing.T) {
	svc, _, reporter, _ := newIssueFixture(t)
	issue := fileIssue(t, svc, reporter)

	_, err := svc.UpdateStatus(context.Background(), reporter, issue.ID, "Closed", "")
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestToggleSupport_IdempotentPerUser(t *testing.T) {
	svc, _, reporter, admin := newIssueFixture(t)
	issue := fileIssue(t, svc, reporter)
	ctx := context.Background()

	first, supporting, err := svc.ToggleSupport(ctx, admin, issue.ID)
	require.NoError(t, err)
	assert.True(t, supporting)
	assert.Equal(t, 1, first.SupportCount)
	assert.Len(t, first.Supporters, 1)

	second, supporting, err := svc.ToggleSupport(ctx, admin, issue.ID)
	require.NoError(t, err)
	assert.False(t, supporting)
	assert.Zero(t, second.SupportCount)
	assert.Empty(t, second.Supporters)

	_, _, err = svc.ToggleSupport(ctx, nil, issue.ID)
	require.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestDelete_AdminOnly(t *testing.T) {
	svc, _, reporter, admin := newIssueFixture(t)
	issue := fileIssue(t, svc, reporter)
	ctx := context.Background()

	err := svc.Delete(ctx, reporter, issue.ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, admin, issue.ID))

	_, err = svc.Get(ctx, issue.ID)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestBulkStatus_ReturnsMatchedCount(t *testing.T) {
	svc, _, reporter, admin := newIssueFixture(t)
	a := fileIssue(t, svc, reporter)
	b := fileIssue(t, svc, reporter)
	ctx := context.Background()

	matched, err := svc.BulkStatus(ctx, admin, []string{a.ID, "missing", b.ID}, model.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, 2, matched)

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusResolved, got.Status)
	assert.NotNil(t, got.ResolvedAt)

	_, err = svc.BulkStatus(ctx, reporter, []string{a.ID}, model.StatusOpen)
	require.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestBulkDelete_ReturnsMatchedCount(t *testing.T) {
	svc, _, reporter, admin := newIssueFixture(t)
	a := fileIssue(t, svc, reporter)
	b := fileIssue(t, svc, reporter)
	ctx := context.Background()

	matched, err := svc.BulkDelete(ctx, admin, []string{a.ID, b.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, 2, matched)

	_, err = svc.BulkDelete(ctx, admin, nil)
	require.ErrorIs(t, err, apperror.ErrValidation)
}
