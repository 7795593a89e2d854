package auth

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoSlider/GoSlider/internal/db/models"
)

// ErrLDAPDisabled is returned when LDAP authentication is disabled via configuration.
var ErrLDAPDisabled = errors.New("ldap authentication is disabled")

// ErrLDAPConfig is returned for a directory configuration that can never log anyone in.
var ErrLDAPConfig = errors.New("invalid ldap configuration")

// LDAPConfig holds the directory login settings.
type LDAPConfig struct {
	Enabled    bool
	Host       string
	Port       int
	UseSSL     bool // ldaps://
	UseTLS     bool // StartTLS on a plain connection
	SkipVerify bool

	// BindDN and BindPassword are the service account used for searches.
	// Empty means anonymous search.
	BindDN       string
	BindPassword string

	BaseDN     string
	UserFilter string // must contain {username}

	// GroupBaseDN enables the group search. GroupFilter may contain {userdn}.
	GroupBaseDN string
	GroupFilter string

	// GroupRoles grants a role to every member of a directory group, keyed
	// by the lower-cased group name.
	GroupRoles map[string]string

	Timeout int // seconds
}

// Directory is the part of an LDAP connection the provider uses.
// *ldap.Conn satisfies it.
type Directory interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

// DialFunc opens a directory connection.
type DialFunc func(cfg *LDAPConfig) (Directory, error)

// attributes read from a user entry
const (
	attrUID       = "uid"
	attrMail      = "mail"
	attrGivenName = "givenName"
	attrSurname   = "sn"
	attrCN        = "cn"
)

// LDAPProvider logs users in against a directory and reports the groups
// they belong to.
type LDAPProvider struct {
	cfg  LDAPConfig
	db   *gorm.DB
	dial DialFunc
}

// NewLDAPProvider returns a provider dialing the configured server.
func NewLDAPProvider(cfg *LDAPConfig, db *gorm.DB) (*LDAPProvider, error) {
	return NewLDAPProviderWithDialer(cfg, db, dialLDAP)
}

// NewLDAPProviderWithDialer returns a provider opening connections with dial.
func NewLDAPProviderWithDialer(cfg *LDAPConfig, db *gorm.DB, dial DialFunc) (*LDAPProvider, error) {
	if !cfg.Enabled {
		return nil, ErrLDAPDisabled
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: host is empty", ErrLDAPConfig)
	}

	if !strings.Contains(cfg.UserFilter, "{username}") {
		return nil, fmt.Errorf("%w: user filter %q lacks {username}", ErrLDAPConfig, cfg.UserFilter)
	}

	c := *cfg

	if c.Port == 0 {
		c.Port = 389
		if c.UseSSL {
			c.Port = 636
		}
	}

	if c.GroupFilter == "" {
		c.GroupFilter = "(member={userdn})"
	}

	if c.Timeout <= 0 {
		c.Timeout = 10
	}

	roles := make(map[string]string, len(c.GroupRoles))
	for group, role := range c.GroupRoles {
		roles[strings.ToLower(group)] = role
	}

	c.GroupRoles = roles

	return &LDAPProvider{cfg: c, db: db, dial: dial}, nil
}

func dialLDAP(cfg *LDAPConfig) (Directory, error) {
	scheme := "ldap"
	if cfg.UseSSL {
		scheme = "ldaps"
	}

	var tlsConfig *tls.Config
	if cfg.UseSSL || cfg.UseTLS {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: cfg.SkipVerify, //nolint:gosec // opt-in for test directories
			ServerName:         cfg.Host,
		}
	}

	addr := scheme + "://" + net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	conn, err := ldap.DialURL(addr, ldap.DialWithTLSConfig(tlsConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	if cfg.UseTLS && !cfg.UseSSL {
		if err = conn.StartTLS(tlsConfig); err != nil {
			closeDirectory(conn)
			return nil, fmt.Errorf("failed to start tls: %w", err)
		}
	}

	conn.SetTimeout(time.Duration(cfg.Timeout) * time.Second)

	return conn, nil
}

func closeDirectory(d Directory) {
	if err := d.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close ldap connection")
	}
}

// bindService binds as the service account, if one is configured.
func (p *LDAPProvider) bindService(d Directory) error {
	if p.cfg.BindDN == "" {
		return nil
	}

	if err := d.Bind(p.cfg.BindDN, p.cfg.BindPassword); err != nil {
		return fmt.Errorf("service account bind failed: %w", err)
	}

	return nil
}

// Authenticate binds as username and returns the local copy of the user
// and the lower-cased names of its directory groups.
func (p *LDAPProvider) Authenticate(username, password string) (*models.User, []string, error) {
	if password == "" {
		// an empty password is an unauthenticated bind and always succeeds
		return nil, nil, ldap.NewError(ldap.LDAPResultInvalidCredentials, errors.New("empty password"))
	}

	d, err := p.dial(&p.cfg)
	if err != nil {
		return nil, nil, err
	}
	defer closeDirectory(d)

	if err = p.bindService(d); err != nil {
		return nil, nil, err
	}

	entry, err := p.findUser(d, username)
	if err != nil {
		return nil, nil, err
	}

	if err = d.Bind(entry.DN, password); err != nil {
		return nil, nil, fmt.Errorf("user bind failed: %w", err)
	}

	var groups []string

	if p.cfg.GroupBaseDN != "" {
		// the user may not be allowed to search groups
		if err = p.bindService(d); err != nil {
			return nil, nil, err
		}

		if groups, err = p.findGroups(d, entry.DN); err != nil {
			return nil, nil, err
		}
	}

	user, err := p.upsertUser(username, entry)
	if err != nil {
		return nil, nil, err
	}

	log.Debug().Str("username", username).Strs("groups", groups).Msg("ldap login")

	return user, groups, nil
}

func (p *LDAPProvider) findUser(d Directory, username string) (*ldap.Entry, error) {
	res, err := d.Search(ldap.NewSearchRequest(
		p.cfg.BaseDN, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 2, p.cfg.Timeout, false,
		strings.ReplaceAll(p.cfg.UserFilter, "{username}", ldap.EscapeFilter(username)),
		[]string{attrUID, attrMail, attrGivenName, attrSurname},
		nil,
	))
	if err != nil && !ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) {
		return nil, fmt.Errorf("user search failed: %w", err)
	}

	if res == nil || len(res.Entries) == 0 {
		return nil, ErrUserNotFound
	}

	if len(res.Entries) > 1 {
		return nil, ErrMultipleUsersFound
	}

	return res.Entries[0], nil
}

// findGroups returns the names of the groups listing userDN as a member.
// The cn is the name; entries without one are named by their DN.
func (p *LDAPProvider) findGroups(d Directory, userDN string) ([]string, error) {
	res, err := d.Search(ldap.NewSearchRequest(
		p.cfg.GroupBaseDN, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, p.cfg.Timeout, false,
		strings.ReplaceAll(p.cfg.GroupFilter, "{userdn}", ldap.EscapeFilter(userDN)),
		[]string{attrCN},
		nil,
	))
	if err != nil {
		return nil, fmt.Errorf("group search failed: %w", err)
	}

	groups := make([]string, 0, len(res.Entries))

	for _, e := range res.Entries {
		name := e.GetAttributeValue(attrCN)
		if name == "" {
			name = e.DN
		}

		groups = append(groups, strings.ToLower(name))
	}

	return groups, nil
}

// upsertUser keeps the local user in step with its directory entry. Users
// are matched by DN so a renamed uid keeps its account.
func (p *LDAPProvider) upsertUser(username string, entry *ldap.Entry) (*models.User, error) {
	var user models.User

	err := p.db.Where("external_id = ? AND auth_source = ?", entry.DN, models.AuthSourceLDAP).First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Active:     true,
			Username:   username,
			AuthSource: models.AuthSourceLDAP,
			ExternalID: entry.DN,
		}
	case err != nil:
		return nil, fmt.Errorf("failed to look up ldap user: %w", err)
	}

	user.Email = entry.GetAttributeValue(attrMail)
	user.FirstName = entry.GetAttributeValue(attrGivenName)
	user.LastName = entry.GetAttributeValue(attrSurname)

	if err = p.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to save ldap user: %w", err)
	}

	return &user, nil
}

// ApplyGroupRoles maps every configured directory group to its role, so
// members of e.g. a "slider-editors" group may manage slides.
func (p *LDAPProvider) ApplyGroupRoles(svc *Service) error {
	var errs []error

	for group, role := range p.cfg.GroupRoles {
		if err := svc.MapGroup(models.GroupSourceLDAP, group, role); err != nil {
			errs = append(errs, fmt.Errorf("group %s: %w", group, err))
			continue
		}

		log.Info().Str("group", group).Str("role", role).Msg("ldap group mapped")
	}

	return errors.Join(errs...)
}

// TestConnection dials the server and binds the service account.
func (p *LDAPProvider) TestConnection() error {
	d, err := p.dial(&p.cfg)
	if err != nil {
		return err
	}
	defer closeDirectory(d)

	return p.bindService(d)
}
