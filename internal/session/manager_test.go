package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"propadmin/internal/api"
	"propadmin/internal/session/mocks"
)

type ManagerSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockAPI      *mocks.MockAdminAPI
	mockNotifier *mocks.MockNotifier
	manager      *Manager
}

func (s *ManagerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockAPI = mocks.NewMockAdminAPI(s.ctrl)
	s.mockNotifier = mocks.NewMockNotifier(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.manager = New(s.mockAPI,
		WithLogger(logger),
		WithNotifier(s.mockNotifier),
	)
}

func (s *ManagerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) testAdmin() *api.Admin {
	return &api.Admin{
		ID:    "1",
		Name:  "Ann",
		Email: "ann@example.com",
		Role: api.Role{
			Name:        "super_admin",
			DisplayName: "Super Admin",
			Level:       100,
		},
		AdditionalPermissions: []string{"exports"},
	}
}

// assertInvariant checks the single-source-of-truth property: identity is
// non-nil exactly when the status is authenticated.
func (s *ManagerSuite) assertInvariant() {
	snap := s.manager.Snapshot()
	if snap.Status == StatusAuthenticated {
		s.NotNil(snap.Admin)
	} else {
		s.Nil(snap.Admin)
	}
	s.Equal(snap.Status == StatusAuthenticated, s.manager.IsAuthenticated())
	s.Equal(snap.Status == StatusLoading, s.manager.IsLoading())
}

func (s *ManagerSuite) TestInitialStateIsLoading() {
	s.Equal(StatusLoading, s.manager.Snapshot().Status)
	s.True(s.manager.IsLoading())
	s.Nil(s.manager.Admin())
	s.assertInvariant()
}

func (s *ManagerSuite) TestCheckAuthHappyPath() {
	admin := s.testAdmin()
	s.mockAPI.EXPECT().CheckAuth(gomock.Any()).Return(admin, true)

	ok := s.manager.CheckAuth(context.Background())

	s.True(ok)
	s.True(s.manager.IsAuthenticated())
	s.Equal("Ann", s.manager.Admin().Name)
	s.assertInvariant()
}

func (s *ManagerSuite) TestCheckAuthFailureClearsIdentity() {
	admin := s.testAdmin()
	s.mockAPI.EXPECT().CheckAuth(gomock.Any()).Return(admin, true)
	s.True(s.manager.CheckAuth(context.Background()))

	// Expired session at the next check.
	s.mockAPI.EXPECT().CheckAuth(gomock.Any()).Return(nil, false)
	ok := s.manager.CheckAuth(context.Background())

	s.False(ok)
	s.Equal(StatusUnauthenticated, s.manager.Snapshot().Status)
	s.Nil(s.manager.Admin())
	s.assertInvariant()
}

func (s *ManagerSuite) TestCheckAuthIsIdempotent() {
	admin := s.testAdmin()
	s.mockAPI.EXPECT().CheckAuth(gomock.Any()).Return(admin, true).Times(2)

	first := s.manager.CheckAuth(context.Background())
	firstSnap := s.manager.Snapshot()
	second := s.manager.CheckAuth(context.Background())
	secondSnap := s.manager.Snapshot()

	s.Equal(first, second)
	s.Equal(firstSnap.Status, secondSnap.Status)
	s.Equal(firstSnap.Admin.ID, secondSnap.Admin.ID)
}

func (s *ManagerSuite) TestCheckAuthEntersLoadingFirst() {
	var duringCall Status
	s.mockAPI.EXPECT().CheckAuth(gomock.Any()).DoAndReturn(
		func(context.Context) (*api.Admin, bool) {
			duringCall = s.manager.Snapshot().Status
			return nil, false
		})

	s.manager.CheckAuth(context.Background())
	s.Equal(StatusLoading, duringCall)
}

func (s *ManagerSuite) TestSupersededCheckIsDiscarded() {
	admin := s.testAdmin()

	// While the first check is in flight, a login commits a newer
	// generation; the stale unauthenticated response must not win.
	s.mockAPI.EXPECT().CheckAuth(gomock.Any()).DoAndReturn(
		func(context.Context) (*api.Admin, bool) {
			s.manager.Login(context.Background(), admin)
			return nil, false
		})

	s.manager.CheckAuth(context.Background())

	s.True(s.manager.IsAuthenticated())
	s.Equal("Ann", s.manager.Admin().Name)
	s.assertInvariant()
}

func (s *ManagerSuite) TestLoginWithIdentitySkipsNetwork() {
	admin := s.testAdmin()

	ok := s.manager.Login(context.Background(), admin)

	s.True(ok)
	s.True(s.manager.IsAuthenticated())
	s.Equal(admin, s.manager.Admin())
	s.assertInvariant()
}

func (s *ManagerSuite) TestLoginWithoutIdentityDelegatesToCheck() {
	admin := s.testAdmin()
	s.mockAPI.EXPECT().CheckAuth(gomock.Any()).Return(admin, true)

	ok := s.manager.Login(context.Background(), nil)

	s.True(ok)
	s.True(s.manager.IsAuthenticated())
}

func (s *ManagerSuite) TestLogoutClearsStateEvenWhenServerFails() {
	s.manager.Login(context.Background(), s.testAdmin())

	s.mockAPI.EXPECT().Logout(gomock.Any()).Return(errors.New("500 internal server error"))
	s.manager.Logout(context.Background())

	s.Equal(StatusUnauthenticated, s.manager.Snapshot().Status)
	s.Nil(s.manager.Admin())
	s.assertInvariant()
}

func (s *ManagerSuite) TestUnauthorizedErrorForcesUnauthenticated() {
	s.manager.Login(context.Background(), s.testAdmin())
	s.mockNotifier.EXPECT().Error("Session expired. Please log in again.")

	s.manager.HandleAuthError(api.AuthError{
		Kind:    api.AuthErrorUnauthorized,
		Message: "Session expired. Please log in again.",
	})

	s.Equal(StatusUnauthenticated, s.manager.Snapshot().Status)
	s.Nil(s.manager.Admin())
	s.assertInvariant()
}

func (s *ManagerSuite) TestForbiddenErrorKeepsSession() {
	s.manager.Login(context.Background(), s.testAdmin())
	s.mockNotifier.EXPECT().Error("You do not have permission to access this resource.")

	s.manager.HandleAuthError(api.AuthError{
		Kind:    api.AuthErrorForbidden,
		Message: "You do not have permission to access this resource.",
	})

	s.True(s.manager.IsAuthenticated())
	s.Equal("Ann", s.manager.Admin().Name)
	s.assertInvariant()
}

func (s *ManagerSuite) TestStartRegistersHandlerAndChecks() {
	s.mockAPI.EXPECT().SetAuthErrorHandler(gomock.Not(gomock.Nil()))
	s.mockAPI.EXPECT().CheckAuth(gomock.Any()).Return(s.testAdmin(), true)

	s.True(s.manager.Start(context.Background()))
	s.True(s.manager.IsAuthenticated())
}

func (s *ManagerSuite) TestCloseUnregistersHandler() {
	s.mockAPI.EXPECT().SetAuthErrorHandler(gomock.Nil())
	s.manager.Close()
}

func (s *ManagerSuite) TestSnapshotProjections() {
	s.Run("unauthenticated defaults", func() {
		snap := Snapshot{Status: StatusUnauthenticated}
		s.Equal("", snap.RoleName())
		s.Equal(0, snap.RoleLevel())
		s.Empty(snap.Permissions())
		s.NotNil(snap.Permissions())
	})

	s.Run("authenticated projections", func() {
		snap := Snapshot{Status: StatusAuthenticated, Admin: s.testAdmin()}
		s.Equal("super_admin", snap.RoleName())
		s.Equal(100, snap.RoleLevel())
		s.Equal([]string{"exports"}, snap.Permissions())
	})
}

func (s *ManagerSuite) TestOnChangeObservesTransitions() {
	var statuses []Status
	s.manager.OnChange(func(snap Snapshot) {
		statuses = append(statuses, snap.Status)
	})

	s.mockAPI.EXPECT().CheckAuth(gomock.Any()).Return(s.testAdmin(), true)
	s.manager.CheckAuth(context.Background())

	s.Equal([]Status{StatusLoading, StatusAuthenticated}, statuses)
}
