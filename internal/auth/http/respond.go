package http

import (
	"github.com/recipic-shop/recipic/internal/auth/domain"
	"github.com/recipic-shop/recipic/pkg/authapi"
)

func memberResponse(m domain.Member) authapi.MemberResponse {
	return authapi.MemberResponse{
		ID:        m.ID,
		Email:     m.Email,
		Nickname:  m.Nickname,
		PhotoURL:  m.PhotoURL,
		Role:      m.Role,
		Activated: m.Activated,
		Provider:  m.Provider,
		CreatedAt: m.CreatedAt,
	}
}

func tokenResponse(pair domain.TokenPair) authapi.TokenResponse {
	return authapi.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	}
}
