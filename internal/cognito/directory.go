// Package cognito implements the provisioning directory on an AWS Cognito
// user pool.
package cognito

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/terraincognita07/kgjournal/internal/models"
	"github.com/terraincognita07/kgjournal/internal/services"
)

// API is the subset of the Cognito client the directory calls.
type API interface {
	AdminGetUser(ctx context.Context, params *cip.AdminGetUserInput, optFns ...func(*cip.Options)) (*cip.AdminGetUserOutput, error)
	AdminCreateUser(ctx context.Context, params *cip.AdminCreateUserInput, optFns ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error)
	AdminSetUserPassword(ctx context.Context, params *cip.AdminSetUserPasswordInput, optFns ...func(*cip.Options)) (*cip.AdminSetUserPasswordOutput, error)
	AdminUpdateUserAttributes(ctx context.Context, params *cip.AdminUpdateUserAttributesInput, optFns ...func(*cip.Options)) (*cip.AdminUpdateUserAttributesOutput, error)
	AdminAddUserToGroup(ctx context.Context, params *cip.AdminAddUserToGroupInput, optFns ...func(*cip.Options)) (*cip.AdminAddUserToGroupOutput, error)
}

var _ services.Directory = (*Directory)(nil)

type Directory struct {
	client     API
	userPoolID string
}

func NewDirectory(client API, userPoolID string) (*Directory, error) {
	if userPoolID == "" {
		return nil, errors.New("cognito user pool id is required")
	}
	return &Directory{client: client, userPoolID: userPoolID}, nil
}

func NewClient(cfg aws.Config) *cip.Client {
	return cip.NewFromConfig(cfg)
}

func (directory *Directory) GetUser(ctx context.Context, username string) (services.DirectoryUser, error) {
	output, err := directory.client.AdminGetUser(ctx, &cip.AdminGetUserInput{
		UserPoolId: aws.String(directory.userPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return services.DirectoryUser{}, translate(err)
	}

	attributes := make(map[string]string, len(output.UserAttributes))
	for _, attribute := range output.UserAttributes {
		attributes[aws.ToString(attribute.Name)] = aws.ToString(attribute.Value)
	}
	return services.DirectoryUser{
		Username:   aws.ToString(output.Username),
		Attributes: attributes,
		Status:     string(output.UserStatus),
	}, nil
}

// CreateUser marks the email verified. A permanent password is applied with a
// follow-up AdminSetUserPassword call because AdminCreateUser only accepts a
// temporary one.
func (directory *Directory) CreateUser(ctx context.Context, input services.DirectoryCreateInput) error {
	attributes := map[string]string{
		models.AttributeEmail:         input.Username,
		models.AttributeEmailVerified: "true",
	}
	for name, value := range input.Attributes {
		attributes[name] = value
	}

	params := &cip.AdminCreateUserInput{
		UserPoolId:     aws.String(directory.userPoolID),
		Username:       aws.String(input.Username),
		UserAttributes: attributeTypes(attributes),
	}
	if input.SuppressInvite {
		params.MessageAction = types.MessageActionTypeSuppress
	}
	if input.TemporaryPassword {
		params.TemporaryPassword = aws.String(input.Password)
	}

	if _, err := directory.client.AdminCreateUser(ctx, params); err != nil {
		var exists *types.UsernameExistsException
		if !errors.As(err, &exists) || input.TemporaryPassword {
			return translate(err)
		}
	}
	if input.TemporaryPassword {
		return nil
	}
	return directory.SetPassword(ctx, input.Username, input.Password, true)
}

func (directory *Directory) SetPassword(ctx context.Context, username string, password string, permanent bool) error {
	_, err := directory.client.AdminSetUserPassword(ctx, &cip.AdminSetUserPasswordInput{
		UserPoolId: aws.String(directory.userPoolID),
		Username:   aws.String(username),
		Password:   aws.String(password),
		Permanent:  permanent,
	})
	return translate(err)
}

func (directory *Directory) UpdateAttributes(ctx context.Context, username string, attributes map[string]string) error {
	_, err := directory.client.AdminUpdateUserAttributes(ctx, &cip.AdminUpdateUserAttributesInput{
		UserPoolId:     aws.String(directory.userPoolID),
		Username:       aws.String(username),
		UserAttributes: attributeTypes(attributes),
	})
	return translate(err)
}

func (directory *Directory) AddToGroup(ctx context.Context, username string, group string) error {
	_, err := directory.client.AdminAddUserToGroup(ctx, &cip.AdminAddUserToGroupInput{
		UserPoolId: aws.String(directory.userPoolID),
		Username:   aws.String(username),
		GroupName:  aws.String(group),
	})
	return translate(err)
}

func attributeTypes(attributes map[string]string) []types.AttributeType {
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]types.AttributeType, 0, len(names))
	for _, name := range names {
		result = append(result, types.AttributeType{
			Name:  aws.String(name),
			Value: aws.String(attributes[name]),
		})
	}
	return result
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var notFound *types.UserNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", services.ErrUserNotFound, err)
	}
	var exists *types.UsernameExistsException
	if errors.As(err, &exists) {
		return fmt.Errorf("%w: %v", services.ErrUserExists, err)
	}
	var weak *types.InvalidPasswordException
	if errors.As(err, &weak) {
		return fmt.Errorf("%w: %v", services.ErrWeakPassword, err)
	}
	return err
}
