package session

import (
	"context"
	"creativehub/authority"
	"time"

	"github.com/fundwit/go-commons/types"
)

type Session struct {
	Context context.Context `json:"-"`

	Token    string                `json:"token"`
	Identity Identity              `json:"identity"`
	Perms    authority.Permissions `json:"perms"`

	SigningTime time.Time `json:"-"`
}

type Identity struct {
	ID       types.ID `json:"id"       yaml:"id"`
	UUID     string   `json:"uuid"     yaml:"uuid"`
	Name     string   `json:"name"     yaml:"name"`
	Nickname string   `json:"nickname" yaml:"nickname"`
}

func (s *Session) Clone() Session {
	var perms authority.Permissions
	if s.Perms != nil {
		perms = make(authority.Permissions, len(s.Perms))
		copy(perms, s.Perms)
	}
	return Session{
		Context:     s.Context,
		Token:       s.Token,
		Identity:    s.Identity,
		Perms:       perms,
		SigningTime: s.SigningTime,
	}
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}
