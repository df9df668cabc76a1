package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/recipic-shop/recipic/internal/auth/domain"
	"github.com/recipic-shop/recipic/internal/auth/store"
	"github.com/recipic-shop/recipic/pkg/cryptox"
	"github.com/recipic-shop/recipic/pkg/idx"
	"github.com/recipic-shop/recipic/pkg/slogx"
	"golang.org/x/oauth2"
)

var (
	ErrUnknownProvider = errors.New("unknown_provider")
	ErrSocialHandshake = errors.New("social_handshake_failed")
)

// SocialProvider configures one OAuth2 login provider. AttributeMapping
// names the userinfo fields that carry the external id, email, nickname
// and photo; providers differ (Kakao nests them, Google flattens them), so
// a dotted path descends into nested objects.
type SocialProvider struct {
	Name        string // "kakao", "google", "naver"
	Config      *oauth2.Config
	UserInfoURL string

	IDField       string
	EmailField    string
	NicknameField string
	PhotoField    string
}

// SocialUser is the normalized identity returned by a provider handshake.
type SocialUser struct {
	Provider   string
	ExternalID string
	Email      string
	Nickname   string
	PhotoURL   string
}

// SocialLoginService bridges OAuth2 providers into the member store. A
// callback resolves to an existing member by email or creates an active
// member with a random password, then issues the same token pair a
// credential login would.
type SocialLoginService struct {
	Store     store.Store
	Tokens    *TokenService
	Providers map[string]*SocialProvider
}

// Provider looks up a configured provider by its URL key.
func (s *SocialLoginService) Provider(name string) (*SocialProvider, error) {
	p, ok := s.Providers[strings.ToLower(name)]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}

// AuthCodeURL builds the provider redirect URL carrying the CSRF state.
func (s *SocialLoginService) AuthCodeURL(providerName, state string) (string, error) {
	p, err := s.Provider(providerName)
	if err != nil {
		return "", err
	}
	return p.Config.AuthCodeURL(state), nil
}

// NewState mints the random state value bound to the login attempt via a
// short-lived cookie.
func (s *SocialLoginService) NewState() (string, error) {
	return cryptox.GenerateToken(cryptox.TokenSize128)
}

// HandleCallback exchanges the authorization code, fetches userinfo and
// issues a token pair for the resolved member. Provider-side failures
// collapse to ErrSocialHandshake; the handler redirects those to the
// frontend failure URL.
func (s *SocialLoginService) HandleCallback(
	ctx context.Context,
	providerName, code, userAgent string,
) (*domain.TokenPair, error) {
	p, err := s.Provider(providerName)
	if err != nil {
		return nil, err
	}

	log := slogx.FromContext(ctx)

	token, err := p.Config.Exchange(ctx, code)
	if err != nil {
		log.Warn("oauth2 code exchange failed", "provider", p.Name, "err", err)
		return nil, ErrSocialHandshake
	}

	user, err := p.fetchUser(ctx, token)
	if err != nil {
		log.Warn("oauth2 userinfo fetch failed", "provider", p.Name, "err", err)
		return nil, ErrSocialHandshake
	}

	member, err := s.resolveMember(ctx, user)
	if err != nil {
		return nil, err
	}

	pair, err := s.Tokens.GenerateTokenPair(ctx, member.Principal(), userAgent, false)
	if err != nil {
		return nil, err
	}

	log.Info("social login succeeded", "provider", p.Name, "member_id", member.ID)
	return pair, nil
}

// fetchUser retrieves and normalizes the provider's userinfo document.
func (p *SocialProvider) fetchUser(ctx context.Context, token *oauth2.Token) (SocialUser, error) {
	client := p.Config.Client(ctx, token)

	resp, err := client.Get(p.UserInfoURL)
	if err != nil {
		return SocialUser{}, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return SocialUser{}, fmt.Errorf("user info request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return SocialUser{}, fmt.Errorf("decode user info: %w", err)
	}

	user := SocialUser{
		Provider:   p.Name,
		ExternalID: lookupString(doc, p.IDField),
		Email:      lookupString(doc, p.EmailField),
		Nickname:   lookupString(doc, p.NicknameField),
		PhotoURL:   lookupString(doc, p.PhotoField),
	}

	if user.ExternalID == "" {
		return SocialUser{}, errors.New("missing user id in userinfo response")
	}
	if user.Email == "" {
		return SocialUser{}, errors.New("missing email in userinfo response")
	}
	if user.Nickname == "" {
		user.Nickname = user.Email
	}
	return user, nil
}

// resolveMember finds the member for a social identity, creating one on
// first login. Social members are active immediately; their password is
// random and never used.
func (s *SocialLoginService) resolveMember(ctx context.Context, user SocialUser) (domain.Member, error) {
	email := normalizeEmail(user.Email)

	member, err := s.Store.Members().GetMemberByEmail(ctx, email)
	if err == nil {
		return member, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Member{}, err
	}

	password, err := cryptox.GeneratePassword()
	if err != nil {
		return domain.Member{}, err
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Member{}, err
	}

	member = domain.Member{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Nickname:     user.Nickname,
		PhotoURL:     user.PhotoURL,
		Role:         domain.RoleMember,
		Provider:     user.Provider,
		Activated:    true,
	}
	if err := s.Store.Members().CreateMember(ctx, member); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with another first login; use the winner's row.
			return s.Store.Members().GetMemberByEmail(ctx, email)
		}
		return domain.Member{}, err
	}
	return member, nil
}

// lookupString resolves a dotted path ("kakao_account.email") through
// nested userinfo objects. Numbers are formatted, since some providers
// return numeric ids.
func lookupString(doc map[string]any, path string) string {
	if path == "" {
		return ""
	}

	parts := strings.Split(path, ".")
	var cur any = doc
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur, ok = m[part]
		if !ok {
			return ""
		}
	}

	switch v := cur.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}
