package domain

import "time"

// Member roles. Stored as-is in the database and carried in access-token
// claims, so the values are stable.
const (
	RoleMember = "ROLE_MEMBER"
	RoleAdmin  = "ROLE_ADMIN"
)

// Auth providers a member can originate from.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
	ProviderKakao  = "kakao"
	ProviderNaver  = "naver"
)

type Member struct {
	ID           string
	Email        string
	PasswordHash string // argon2 encoded (bcrypt for legacy rows)
	Nickname     string
	PhotoURL     string
	Role         string // ROLE_MEMBER or ROLE_ADMIN
	Provider     string // "local" or the social provider key
	Activated    bool   // false until the email activation token is consumed
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the authenticated identity handed to token issuance after a
// successful credential or social login. It carries no secrets.
type Principal struct {
	MemberID string
	Email    string
	Role     string
}

func (m Member) Principal() Principal {
	return Principal{MemberID: m.ID, Email: m.Email, Role: m.Role}
}
