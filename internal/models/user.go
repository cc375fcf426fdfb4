package models

import "time"

const (
	GroupAdmin = "Admin"

	AttributeEmail         = "email"
	AttributeEmailVerified = "email_verified"
	AttributeSub           = "sub"
	AttributeOwnerID       = "custom:ownerId"
	AttributeCustomerID    = "custom:customerId"
)

type User struct {
	ID                 string            `gorm:"primaryKey"`
	Email              string            `gorm:"uniqueIndex;not null"`
	PasswordHash       string            `gorm:"not null"`
	EmailVerified      bool              `gorm:"not null;default:false"`
	MustChangePassword bool              `gorm:"not null;default:false"`
	Attributes         map[string]string `gorm:"serializer:json"`
	Groups             []string          `gorm:"column:group_names;serializer:json"`
	CreatedAt          time.Time         `gorm:"not null"`
	UpdatedAt          time.Time
}

func (user *User) InGroup(name string) bool {
	for _, group := range user.Groups {
		if group == name {
			return true
		}
	}
	return false
}

// UserAttributes returns the attribute view a trigger receives: standard
// attributes followed by the stored custom ones.
func (user *User) UserAttributes() map[string]string {
	attributes := make(map[string]string, len(user.Attributes)+3)
	for name, value := range user.Attributes {
		attributes[name] = value
	}
	attributes[AttributeSub] = user.ID
	attributes[AttributeEmail] = user.Email
	if user.EmailVerified {
		attributes[AttributeEmailVerified] = "true"
	} else {
		attributes[AttributeEmailVerified] = "false"
	}
	return attributes
}
