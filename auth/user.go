package auth

import (
	"errors"
)

type DBUser interface {
	ID() int
	Name() string // can be email address
	Roles() Role
	Disabled() bool
	ContactTags() ContactTags // without the implicit "pc" tag
}

type UserDB interface {
	ChangePassword(u DBUser, old, new string) error
	Delete(u DBUser) error
	GetUser(id int) (DBUser, error)
	GetUserByName(name string) (DBUser, error)
	GetAllUsers(limit, offset int) ([]DBUser, error)
	InsertUser(name string) (DBUser, error)
	LoginUser(name, password string) (DBUser, error)
	SetContactTags(u DBUser, tags ContactTags) error
	SetPassword(u DBUser, password string) error
	SetRoles(u DBUser, roles Role) error
	Writeable() bool
}

var ErrEmptyPassword = errors.New("refusing to set empty password")
