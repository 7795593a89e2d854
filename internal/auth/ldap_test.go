package auth_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSlider/GoSlider/internal/auth"
	"github.com/GoSlider/GoSlider/internal/db/models"
)

const (
	serviceDN = "cn=svc,dc=example,dc=com"
	aliceDN   = "uid=alice,ou=people,dc=example,dc=com"
)

// fakeDirectory is an in-memory directory with one user and two groups.
type fakeDirectory struct {
	passwords map[string]string
	users     []*ldap.Entry
	groups    map[string][]*ldap.Entry // member dn -> groups
	binds     []string
	filters   []string
	closed    bool
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		passwords: map[string]string{serviceDN: "svc-secret", aliceDN: "wonderland"},
		users: []*ldap.Entry{ldap.NewEntry(aliceDN, map[string][]string{
			"uid":       {"alice"},
			"mail":      {"alice@example.com"},
			"givenName": {"Alice"},
			"sn":        {"Liddell"},
		})},
		groups: map[string][]*ldap.Entry{
			aliceDN: {
				ldap.NewEntry("cn=Slider-Editors,ou=groups,dc=example,dc=com",
					map[string][]string{"cn": {"Slider-Editors"}}),
				ldap.NewEntry("ou=nameless,ou=groups,dc=example,dc=com", nil),
			},
		},
	}
}

func (f *fakeDirectory) Bind(username, password string) error {
	f.binds = append(f.binds, username)

	if pw, ok := f.passwords[username]; !ok || pw != password {
		return ldap.NewError(ldap.LDAPResultInvalidCredentials, errors.New("invalid credentials"))
	}

	return nil
}

func (f *fakeDirectory) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	f.filters = append(f.filters, req.Filter)

	if strings.HasPrefix(req.BaseDN, "ou=groups") {
		for dn, groups := range f.groups {
			if strings.Contains(req.Filter, ldap.EscapeFilter(dn)) {
				return &ldap.SearchResult{Entries: groups}, nil
			}
		}

		return &ldap.SearchResult{}, nil
	}

	var found []*ldap.Entry

	for _, u := range f.users {
		if strings.Contains(req.Filter, "(uid="+u.GetAttributeValue("uid")+")") {
			found = append(found, u)
		}
	}

	if req.SizeLimit > 0 && len(found) >= req.SizeLimit {
		return &ldap.SearchResult{Entries: found[:req.SizeLimit]},
			ldap.NewError(ldap.LDAPResultSizeLimitExceeded, errors.New("size limit exceeded"))
	}

	return &ldap.SearchResult{Entries: found}, nil
}

func (f *fakeDirectory) Close() error {
	f.closed = true
	return nil
}

func ldapConfig() *auth.LDAPConfig {
	return &auth.LDAPConfig{
		Enabled:      true,
		Host:         "ldap.example.com",
		BindDN:       serviceDN,
		BindPassword: "svc-secret",
		BaseDN:       "ou=people,dc=example,dc=com",
		UserFilter:   "(uid={username})",
		GroupBaseDN:  "ou=groups,dc=example,dc=com",
		GroupRoles:   map[string]string{"Slider-Editors": "editor"},
	}
}

func newLDAP(t *testing.T, cfg *auth.LDAPConfig, dir *fakeDirectory) *auth.LDAPProvider {
	t.Helper()

	db := setupTestDB(t)

	p, err := auth.NewLDAPProviderWithDialer(cfg, db, func(*auth.LDAPConfig) (auth.Directory, error) {
		return dir, nil
	})
	require.NoError(t, err)

	return p
}

func TestNewLDAPProvider_Config(t *testing.T) {
	_, err := auth.NewLDAPProvider(&auth.LDAPConfig{}, nil)
	require.ErrorIs(t, err, auth.ErrLDAPDisabled)

	_, err = auth.NewLDAPProvider(&auth.LDAPConfig{Enabled: true, UserFilter: "(uid={username})"}, nil)
	require.ErrorIs(t, err, auth.ErrLDAPConfig)

	_, err = auth.NewLDAPProvider(&auth.LDAPConfig{Enabled: true, Host: "h", UserFilter: "(uid=alice)"}, nil)
	require.ErrorIs(t, err, auth.ErrLDAPConfig)
}

func TestLDAPAuthenticate(t *testing.T) {
	dir := newFakeDirectory()
	p := newLDAP(t, ldapConfig(), dir)

	user, groups, err := p.Authenticate("alice", "wonderland")
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Liddell", user.LastName)
	assert.Equal(t, models.AuthSourceLDAP, user.AuthSource)
	assert.Equal(t, aliceDN, user.ExternalID)
	assert.True(t, user.Active)

	assert.Equal(t, []string{"slider-editors", "ou=nameless,ou=groups,dc=example,dc=com"}, groups)
	assert.Equal(t, []string{serviceDN, aliceDN, serviceDN}, dir.binds)
	assert.True(t, dir.closed)

	// a second login updates the same account
	dir.users[0] = ldap.NewEntry(aliceDN, map[string][]string{"uid": {"alice"}, "mail": {"a@example.com"}})

	again, _, err := p.Authenticate("alice", "wonderland")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "a@example.com", again.Email)
}

func TestLDAPAuthenticate_Failures(t *testing.T) {
	dir := newFakeDirectory()
	p := newLDAP(t, ldapConfig(), dir)

	_, _, err := p.Authenticate("alice", "nope")
	assert.True(t, ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials))

	_, _, err = p.Authenticate("alice", "")
	assert.True(t, ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials))

	_, _, err = p.Authenticate("bob", "x")
	require.ErrorIs(t, err, auth.ErrUserNotFound)

	dir.users = append(dir.users, dir.users[0])
	_, _, err = p.Authenticate("alice", "wonderland")
	require.ErrorIs(t, err, auth.ErrMultipleUsersFound)

	cfg := ldapConfig()
	cfg.BindPassword = "wrong"
	_, _, err = newLDAP(t, cfg, newFakeDirectory()).Authenticate("alice", "wonderland")
	assert.True(t, ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials))
}

func TestLDAPAuthenticate_FilterIsEscaped(t *testing.T) {
	dir := newFakeDirectory()
	p := newLDAP(t, ldapConfig(), dir)

	_, _, err := p.Authenticate("*)(uid=alice", "wonderland")
	require.ErrorIs(t, err, auth.ErrUserNotFound)
	assert.Equal(t, `(uid=\2a\29\28uid=alice)`, dir.filters[0])
}

func TestLDAPGroupRoles_GrantSliderManage(t *testing.T) {
	dir := newFakeDirectory()
	db := setupTestDB(t)
	svc := auth.NewService(db)

	grant(t, db, "editor", auth.PermDashboardView, auth.PermSliderManage)

	p, err := auth.NewLDAPProviderWithDialer(ldapConfig(), db, func(*auth.LDAPConfig) (auth.Directory, error) {
		return dir, nil
	})
	require.NoError(t, err)
	require.NoError(t, p.ApplyGroupRoles(svc))

	user, groups, err := p.Authenticate("alice", "wonderland")
	require.NoError(t, err)
	require.NoError(t, svc.SyncUserGroups(user.ID, groups, models.GroupSourceLDAP))

	slider := models.Slider{Name: "Front page"}
	require.NoError(t, db.Create(&slider).Error)

	can, err := svc.HasManageCapability(user.ID, slider.ID)
	require.NoError(t, err)
	assert.True(t, can)

	// leaving the group revokes it on the next login
	dir.groups = nil

	_, groups, err = p.Authenticate("alice", "wonderland")
	require.NoError(t, err)
	require.NoError(t, svc.SyncUserGroups(user.ID, groups, models.GroupSourceLDAP))

	can, err = svc.HasManageCapability(user.ID, slider.ID)
	require.NoError(t, err)
	assert.False(t, can)

	cfg := ldapConfig()
	cfg.GroupRoles = map[string]string{"ghosts": "no-such-role"}
	p, err = auth.NewLDAPProviderWithDialer(cfg, db, func(*auth.LDAPConfig) (auth.Directory, error) { return dir, nil })
	require.NoError(t, err)
	require.ErrorIs(t, p.ApplyGroupRoles(svc), auth.ErrRoleNotFound)
}

func TestLDAPTestConnection(t *testing.T) {
	dir := newFakeDirectory()
	require.NoError(t, newLDAP(t, ldapConfig(), dir).TestConnection())
	assert.Equal(t, []string{serviceDN}, dir.binds)

	dialErr := errors.New("connection refused")
	p, err := auth.NewLDAPProviderWithDialer(ldapConfig(), nil, func(*auth.LDAPConfig) (auth.Directory, error) {
		return nil, dialErr
	})
	require.NoError(t, err)
	require.ErrorIs(t, p.TestConnection(), dialErr)
}
