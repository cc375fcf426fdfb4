package api

type credentialsInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type completeNewPasswordInput struct {
	Email             string `json:"email" form:"email"`
	TemporaryPassword string `json:"temporary_password" form:"temporary_password"`
	NewPassword       string `json:"new_password" form:"new_password"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}

type attributesInput struct {
	Attributes map[string]string `json:"attributes"`
}
