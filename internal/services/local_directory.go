package services

import (
	"context"
	"errors"
)

var _ Directory = (*LocalDirectory)(nil)

// LocalDirectory exposes the local user pool through the Directory interface.
type LocalDirectory struct {
	auth *AuthService
}

func NewLocalDirectory(auth *AuthService) *LocalDirectory {
	return &LocalDirectory{auth: auth}
}

func (directory *LocalDirectory) GetUser(_ context.Context, username string) (DirectoryUser, error) {
	user, err := directory.auth.FindByEmail(username)
	if errors.Is(err, ErrAuthCredentialsInvalid) {
		return DirectoryUser{}, ErrUserNotFound
	}
	if err != nil {
		return DirectoryUser{}, err
	}
	status := "CONFIRMED"
	if user.MustChangePassword {
		status = "FORCE_CHANGE_PASSWORD"
	}
	return DirectoryUser{
		Username:   user.Email,
		Attributes: user.UserAttributes(),
		Groups:     append([]string(nil), user.Groups...),
		Status:     status,
	}, nil
}

// CreateUser always marks the email verified. There is no mailer, so the
// invite flag has no effect locally.
func (directory *LocalDirectory) CreateUser(_ context.Context, input DirectoryCreateInput) error {
	_, err := directory.auth.CreateUser(NewUser{
		Email:             input.Username,
		Password:          input.Password,
		Attributes:        input.Attributes,
		EmailVerified:     true,
		TemporaryPassword: input.TemporaryPassword,
	})
	return err
}

func (directory *LocalDirectory) SetPassword(_ context.Context, username string, password string, permanent bool) error {
	user, err := directory.auth.FindByEmail(username)
	if err != nil {
		return err
	}
	return directory.auth.SetPassword(user.ID, password, !permanent)
}

func (directory *LocalDirectory) UpdateAttributes(_ context.Context, username string, attributes map[string]string) error {
	user, err := directory.auth.FindByEmail(username)
	if err != nil {
		return err
	}
	_, err = directory.auth.UpdateAttributes(user.ID, attributes)
	return err
}

func (directory *LocalDirectory) AddToGroup(_ context.Context, username string, group string) error {
	user, err := directory.auth.FindByEmail(username)
	if err != nil {
		return err
	}
	_, err = directory.auth.AddToGroup(user.ID, group)
	return err
}
