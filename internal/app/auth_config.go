package app

import (
	iauth "github.com/bannerworks/alertbanner/internal/auth"
)

// JWTServiceConfig converts the configuration into the shape expected by the auth package.
func (c AuthConfig) JWTServiceConfig() iauth.JWTConfig {
	cfg := iauth.JWTConfig{
		Secret:   c.JWT.Secret,
		Issuer:   c.JWT.Issuer,
		TokenTTL: c.JWT.TTL,
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = iauth.DefaultTokenTTL
	}
	return cfg
}
