package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/membership-api/internal/models"
	"github.com/yukikurage/membership-api/internal/notify"
	"github.com/yukikurage/membership-api/internal/repository"
	"github.com/yukikurage/membership-api/internal/security"
	"github.com/yukikurage/membership-api/internal/testutil"
)

type recordingEnqueuer struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (r *recordingEnqueuer) Enqueue(msg notify.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recordingEnqueuer) subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	for i, msg := range r.messages {
		out[i] = msg.Subject
	}
	return out
}

func (r *recordingEnqueuer) last() notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[len(r.messages)-1]
}

type ServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	db       *gorm.DB
	notifier *recordingEnqueuer

	auth        *AuthService
	roles       *RoleService
	memberships *MembershipService
	orgs        *OrganizationService
	stats       *StatsService
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewDB(s.T())
	s.notifier = &recordingEnqueuer{}

	store := repository.NewStore(s.db)
	log := zap.NewNop()
	s.auth = NewAuthService(store, security.NewBcryptHasher(4), s.notifier, log)
	s.roles = NewRoleService(store)
	s.memberships = NewMembershipService(store, s.notifier, log)
	s.orgs = NewOrganizationService(store, s.auth, s.notifier, log)
	s.stats = NewStatsService(store)
}

func (s *ServiceTestSuite) signup(email, orgName string) *SignupResult {
	result, err := s.auth.Signup(s.ctx, SignupInput{
		Email:            email,
		Password:         "pw",
		OrganizationName: orgName,
	})
	s.Require().NoError(err)
	return result
}

func (s *ServiceTestSuite) count(model interface{}) int64 {
	var n int64
	s.Require().NoError(s.db.Model(model).Count(&n).Error)
	return n
}

func (s *ServiceTestSuite) TestSignupScenario() {
	alice := s.signup("alice@x.com", "Acme")
	s.Equal(models.UserStatusActive, alice.User.Status)
	s.Equal(models.MemberStatusActive, alice.Member.Status)
	s.Equal([]string{"Thank you for signing up!"}, s.notifier.subjects())

	owner, err := s.roles.FindByNameInOrg(s.ctx, alice.Organization.ID, models.RoleOwner)
	s.Require().NoError(err)
	s.Equal(owner.ID, alice.Member.RoleID)

	user, err := s.auth.Authenticate(s.ctx, "alice@x.com", "pw")
	s.Require().NoError(err)
	s.Equal(alice.User.ID, user.ID)

	_, err = s.auth.Authenticate(s.ctx, "alice@x.com", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
	_, err = s.auth.Authenticate(s.ctx, "nobody@x.com", "pw")
	s.ErrorIs(err, ErrInvalidCredentials)

	bob, err := s.orgs.InviteExisting(s.ctx, "bob@x.com", alice.Organization.ID, models.RoleMember)
	s.Require().NoError(err)
	s.Equal("bob@x.com", bob.UserEmail)
	s.Equal(models.RoleMember, bob.RoleName)

	bobUser, err := s.auth.FindByEmail(s.ctx, "bob@x.com")
	s.Require().NoError(err)
	s.True(bobUser.MustRotatePassword)
	s.Equal(models.UserStatusPending, bobUser.Status)
	s.NotEmpty(bobUser.PasswordHash)

	invite := s.notifier.last()
	s.Equal("bob@x.com", invite.To)
	s.Contains(invite.HTML, "temporary password")

	s.Require().NoError(s.memberships.RemoveMember(s.ctx, bob.ID))
	s.ErrorIs(s.memberships.RemoveMember(s.ctx, bob.ID), ErrMemberNotFound)
}

func (s *ServiceTestSuite) TestSignup_DuplicateEmailWritesNothing() {
	s.signup("alice@x.com", "Acme")
	before := []int64{s.count(&models.User{}), s.count(&models.Organization{}), s.count(&models.Role{}), s.count(&models.Member{})}

	_, err := s.auth.Signup(s.ctx, SignupInput{Email: "ALICE@x.com", Password: "pw", OrganizationName: "Other"})
	s.ErrorIs(err, ErrDuplicateEmail)

	after := []int64{s.count(&models.User{}), s.count(&models.Organization{}), s.count(&models.Role{}), s.count(&models.Member{})}
	s.Equal(before, after)
}

func (s *ServiceTestSuite) TestSignup_Validation() {
	_, err := s.auth.Signup(s.ctx, SignupInput{Email: "a@x.com", Password: "", OrganizationName: "Acme"})
	s.ErrorIs(err, ErrPasswordRequired)

	_, err = s.auth.Signup(s.ctx, SignupInput{Email: "a@x.com", Password: "pw"})
	s.ErrorIs(err, ErrInvalidOrganizationName)

	result, err := s.auth.Signup(s.ctx, SignupInput{Email: "a@x.com", Password: "pw", Personal: true})
	s.Require().NoError(err)
	s.True(result.Organization.Personal)
	s.Equal("a@x.com's organization", result.Organization.Name)
}

func (s *ServiceTestSuite) TestCreateUser_CaseInsensitiveDuplicate() {
	_, err := s.auth.CreateUser(s.ctx, "Carol@x.com", "secret")
	s.Require().NoError(err)

	_, err = s.auth.CreateUser(s.ctx, "carol@X.COM", "secret")
	s.ErrorIs(err, ErrDuplicateEmail)
}

func (s *ServiceTestSuite) TestResetPassword() {
	alice := s.signup("alice@x.com", "Acme")
	_, err := s.orgs.InviteExisting(s.ctx, "bob@x.com", alice.Organization.ID, models.RoleMember)
	s.Require().NoError(err)

	s.Require().NoError(s.auth.ResetPassword(s.ctx, "bob@x.com", "fresh-password"))

	bob, err := s.auth.Authenticate(s.ctx, "bob@x.com", "fresh-password")
	s.Require().NoError(err)
	s.False(bob.MustRotatePassword)
	s.Equal(models.UserStatusActive, bob.Status)
	s.Equal("Password reset", s.notifier.last().Subject)

	s.ErrorIs(s.auth.ResetPassword(s.ctx, "nobody@x.com", "pw"), ErrUserNotFound)
}

func (s *ServiceTestSuite) TestCreateWithOwner_RollsBackForUnknownOwner() {
	_, _, err := s.orgs.CreateWithOwner(s.ctx, "Ghost Org", false, 9999)
	s.ErrorIs(err, ErrUserNotFound)

	s.Zero(s.count(&models.Organization{}))
	s.Zero(s.count(&models.Role{}))
	s.Zero(s.count(&models.Member{}))
}

func (s *ServiceTestSuite) TestCreateWithOwner_ResolvesOwnerPerOrganization() {
	alice := s.signup("alice@x.com", "Acme")

	org, member, err := s.orgs.CreateWithOwner(s.ctx, "Second", false, alice.User.ID)
	s.Require().NoError(err)

	owner, err := s.roles.FindByNameInOrg(s.ctx, org.ID, models.RoleOwner)
	s.Require().NoError(err)
	s.Equal(owner.ID, member.RoleID)
	s.NotEqual(alice.Member.RoleID, member.RoleID)
}

func (s *ServiceTestSuite) TestBootstrap_IsIdempotent() {
	alice := s.signup("alice@x.com", "Acme")

	roles, err := s.roles.Bootstrap(s.ctx, alice.Organization.ID)
	s.Require().NoError(err)
	s.Len(roles, 3)

	listed, err := s.roles.ListByOrg(s.ctx, alice.Organization.ID)
	s.Require().NoError(err)
	s.Len(listed, 3)

	_, err = s.roles.Bootstrap(s.ctx, 9999)
	s.ErrorIs(err, ErrOrganizationNotFound)
}

func (s *ServiceTestSuite) TestCreateRole() {
	alice := s.signup("alice@x.com", "Acme")

	role, err := s.roles.Create(s.ctx, alice.Organization.ID, "Auditor", "Read only")
	s.Require().NoError(err)
	s.Equal("Auditor", role.Name)

	_, err = s.roles.Create(s.ctx, alice.Organization.ID, "Auditor", "")
	s.ErrorIs(err, ErrDuplicateRoleName)

	_, err = s.roles.Create(s.ctx, alice.Organization.ID, "  ", "")
	s.ErrorIs(err, ErrInvalidRoleName)

	_, err = s.roles.Create(s.ctx, 9999, "Auditor", "")
	s.ErrorIs(err, ErrOrganizationNotFound)
}

func (s *ServiceTestSuite) TestAddMember_Errors() {
	acme := s.signup("alice@x.com", "Acme")
	globex := s.signup("gina@x.com", "Globex")
	bob, err := s.auth.CreateUser(s.ctx, "bob@x.com", "pw")
	s.Require().NoError(err)

	globexMember, err := s.roles.FindByNameInOrg(s.ctx, globex.Organization.ID, models.RoleMember)
	s.Require().NoError(err)
	acmeMember, err := s.roles.FindByNameInOrg(s.ctx, acme.Organization.ID, models.RoleMember)
	s.Require().NoError(err)

	_, err = s.memberships.AddMember(s.ctx, acme.Organization.ID, bob.ID, globexMember.ID)
	s.ErrorIs(err, ErrRoleOrgMismatch)

	_, err = s.memberships.AddMember(s.ctx, acme.Organization.ID, bob.ID, 9999)
	s.ErrorIs(err, ErrRoleNotFound)

	_, err = s.memberships.AddMember(s.ctx, acme.Organization.ID, 9999, acmeMember.ID)
	s.ErrorIs(err, ErrUserNotFound)

	member, err := s.memberships.AddMember(s.ctx, acme.Organization.ID, bob.ID, acmeMember.ID)
	s.Require().NoError(err)
	s.Equal(models.MemberStatusPending, member.Status)

	_, err = s.memberships.AddMember(s.ctx, acme.Organization.ID, bob.ID, acmeMember.ID)
	s.ErrorIs(err, ErrAlreadyMember)
}

func (s *ServiceTestSuite) TestAddMember_ConcurrentDuplicates() {
	acme := s.signup("alice@x.com", "Acme")
	bob, err := s.auth.CreateUser(s.ctx, "bob@x.com", "pw")
	s.Require().NoError(err)
	role, err := s.roles.FindByNameInOrg(s.ctx, acme.Organization.ID, models.RoleMember)
	s.Require().NoError(err)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.memberships.AddMember(s.ctx, acme.Organization.ID, bob.ID, role.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		s.ErrorIs(err, ErrAlreadyMember)
	}
	s.Equal(1, successes)

	var rows int64
	s.db.Model(&models.Member{}).Where("org_id = ? AND user_id = ?", acme.Organization.ID, bob.ID).Count(&rows)
	s.Equal(int64(1), rows)
}

func (s *ServiceTestSuite) TestInviteExisting_UnknownRole() {
	acme := s.signup("alice@x.com", "Acme")

	_, err := s.orgs.InviteExisting(s.ctx, "bob@x.com", acme.Organization.ID, "Janitor")
	s.ErrorIs(err, ErrRoleNotFound)

	// The user created for the invite is rolled back with it.
	_, err = s.auth.FindByEmail(s.ctx, "bob@x.com")
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *ServiceTestSuite) TestInviteExisting_KnownUserKeepsCredentials() {
	acme := s.signup("alice@x.com", "Acme")
	s.signup("bob@x.com", "Bobco")

	member, err := s.orgs.InviteExisting(s.ctx, "BOB@x.com", acme.Organization.ID, models.RoleAdmin)
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, member.RoleName)
	s.NotContains(s.notifier.last().HTML, "temporary password")

	_, err = s.auth.Authenticate(s.ctx, "bob@x.com", "pw")
	s.NoError(err)

	_, err = s.orgs.InviteExisting(s.ctx, "bob@x.com", acme.Organization.ID, models.RoleMember)
	s.ErrorIs(err, ErrAlreadyMember)
}

func (s *ServiceTestSuite) TestChangeRole() {
	acme := s.signup("alice@x.com", "Acme")
	globex := s.signup("gina@x.com", "Globex")
	bob, err := s.orgs.InviteExisting(s.ctx, "bob@x.com", acme.Organization.ID, models.RoleMember)
	s.Require().NoError(err)

	admin, err := s.roles.FindByNameInOrg(s.ctx, acme.Organization.ID, models.RoleAdmin)
	s.Require().NoError(err)
	foreign, err := s.roles.FindByNameInOrg(s.ctx, globex.Organization.ID, models.RoleAdmin)
	s.Require().NoError(err)

	_, err = s.memberships.ChangeRole(s.ctx, bob.ID, foreign.ID)
	s.ErrorIs(err, ErrRoleOrgMismatch)
	unchanged, err := s.memberships.GetMember(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.Equal(models.RoleMember, unchanged.RoleName)

	updated, err := s.memberships.ChangeRole(s.ctx, bob.ID, admin.ID)
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, updated.RoleName)
	s.Equal("Member role updated!", s.notifier.last().Subject)

	updated, err = s.memberships.ChangeRoleByName(s.ctx, bob.ID, models.RoleOwner)
	s.Require().NoError(err)
	s.Equal(models.RoleOwner, updated.RoleName)

	_, err = s.memberships.ChangeRoleByName(s.ctx, bob.ID, "Janitor")
	s.ErrorIs(err, ErrRoleNotFound)

	_, err = s.memberships.ChangeRole(s.ctx, 9999, admin.ID)
	s.ErrorIs(err, ErrMemberNotFound)
}

func (s *ServiceTestSuite) TestRequireRole() {
	acme := s.signup("alice@x.com", "Acme")
	bob, err := s.orgs.InviteExisting(s.ctx, "bob@x.com", acme.Organization.ID, models.RoleMember)
	s.Require().NoError(err)

	owner, err := s.memberships.RequireRole(s.ctx, acme.Organization.ID, acme.User.ID, models.RoleOwner, models.RoleAdmin)
	s.Require().NoError(err)
	s.Equal(models.RoleOwner, owner.RoleName)

	_, err = s.memberships.RequireRole(s.ctx, acme.Organization.ID, bob.UserID, models.RoleOwner, models.RoleAdmin)
	s.ErrorIs(err, ErrInsufficientRole)

	_, err = s.memberships.RequireRole(s.ctx, acme.Organization.ID, bob.UserID)
	s.NoError(err)

	_, err = s.memberships.RequireRole(s.ctx, 9999, bob.UserID)
	s.ErrorIs(err, ErrNotOrganizationMember)
}

func (s *ServiceTestSuite) TestListAndRemoveRoundTrip() {
	acme := s.signup("alice@x.com", "Acme")
	bob, err := s.orgs.InviteExisting(s.ctx, "bob@x.com", acme.Organization.ID, models.RoleMember)
	s.Require().NoError(err)

	members, total, err := s.memberships.ListByOrg(s.ctx, acme.Organization.ID, nil)
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(members, 2)

	s.Require().NoError(s.memberships.RemoveMember(s.ctx, bob.ID))

	members, total, err = s.memberships.ListByOrg(s.ctx, acme.Organization.ID, nil)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal(acme.User.ID, members[0].UserID)

	forBob, err := s.memberships.ListByUser(s.ctx, bob.UserID)
	s.Require().NoError(err)
	s.Empty(forBob)
}

func (s *ServiceTestSuite) TestDeleteOrganization() {
	acme := s.signup("alice@x.com", "Acme")

	s.Require().NoError(s.orgs.DeleteOrganization(s.ctx, acme.Organization.ID))
	s.ErrorIs(s.orgs.DeleteOrganization(s.ctx, acme.Organization.ID), ErrOrganizationNotFound)

	_, err := s.orgs.GetOrganization(s.ctx, acme.Organization.ID)
	s.ErrorIs(err, ErrOrganizationNotFound)

	memberships, err := s.orgs.ListForUser(s.ctx, acme.User.ID)
	s.Require().NoError(err)
	s.Empty(memberships)
}

func (s *ServiceTestSuite) TestStats() {
	acme := s.signup("alice@x.com", "Acme")
	s.signup("gina@x.com", "Acme")
	s.signup("hank@x.com", "Hooli")
	_, err := s.orgs.InviteExisting(s.ctx, "bob@x.com", acme.Organization.ID, models.RoleMember)
	s.Require().NoError(err)

	byRole, err := s.stats.CountByRole(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), byRole[models.RoleOwner])
	s.Equal(int64(1), byRole[models.RoleMember])
	s.Equal(int64(0), byRole[models.RoleAdmin])

	// Two organizations share the name Acme and are summed.
	byOrg, err := s.stats.CountByOrg(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), byOrg["Acme"])
	s.Equal(int64(1), byOrg["Hooli"])

	pending := int(models.MemberStatusPending)
	nested, err := s.stats.CountByOrgAndRole(s.ctx, repository.StatsFilter{Status: &pending})
	s.Require().NoError(err)
	s.Equal(int64(1), nested["Acme"][models.RoleMember])
	s.Equal(int64(0), nested["Acme"][models.RoleOwner])
	s.Equal(int64(0), nested["Hooli"][models.RoleOwner])

	from, to := int64(10), int64(5)
	empty, err := s.stats.CountByOrgAndRole(s.ctx, repository.StatsFilter{FromTime: &from, ToTime: &to})
	s.Require().NoError(err)
	for org, roles := range empty {
		for role, n := range roles {
			s.Zerof(n, "%s/%s", org, role)
		}
	}
	s.Len(empty["Hooli"], 3)
}

func (s *ServiceTestSuite) TestNotificationsOnlyAfterCommit() {
	acme := s.signup("alice@x.com", "Acme")
	sent := len(s.notifier.subjects())

	_, err := s.orgs.InviteExisting(s.ctx, "bob@x.com", acme.Organization.ID, "Janitor")
	s.Require().Error(err)
	s.Len(s.notifier.subjects(), sent)

	for _, subject := range s.notifier.subjects() {
		s.False(strings.Contains(subject, "invited"))
	}
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
