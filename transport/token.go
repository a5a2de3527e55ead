package transport

import (
	"errors"
	"strings"
)

// ErrTokenIsEmpty is returned when the token endpoint answers without a token.
var ErrTokenIsEmpty = errors.New("authorization token is empty")

const defaultTokenType = "bearer"

// token is the password-grant response of the auth endpoint.
type token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (t *token) validate() error {
	if t.AccessToken == "" {
		return ErrTokenIsEmpty
	}
	if t.TokenType == "" {
		t.TokenType = defaultTokenType
	}
	return nil
}

// authorizationHeader renders "<type> <token>" as sent by the API's own clients.
func (t *token) authorizationHeader() string {
	return strings.Join([]string{t.TokenType, t.AccessToken}, " ")
}
