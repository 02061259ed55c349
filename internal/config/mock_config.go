package config

import "time"

const (
	adminIDVar            = "ADMIN_ID"
	adminPasswordVar      = "ADMIN_PASSWORD"
	signingSecretVar      = "SIGNING_SECRET"
	accessTokenExpiryVar  = "ACCESS_TOKEN_EXPIRY"
	refreshTokenExpiryVar = "REFRESH_TOKEN_EXPIRY"
)

type Mock struct {
	src source
}

var _ MockConfig = Mock{}

func (m Mock) GetAdminID() string {
	return m.src.get(adminIDVar, "admin@example.com")
}

func (m Mock) GetAdminPassword() string {
	return m.src.get(adminPasswordVar, "")
}

func (m Mock) GetSigningSecret() string {
	return m.src.get(signingSecretVar, "")
}

func (m Mock) GetAccessTokenExpiry() time.Duration {
	return parseDuration(m.src.get(accessTokenExpiryVar, ""), 15*time.Minute)
}

func (m Mock) GetRefreshTokenExpiry() time.Duration {
	return parseDuration(m.src.get(refreshTokenExpiryVar, ""), 7*24*time.Hour) // 7 days
}
