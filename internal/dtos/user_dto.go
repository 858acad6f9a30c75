package dtos

type RegisterRequest struct {
	FullName    string `form:"fullname" json:"fullname" binding:"required,max=100"`
	Email       string `form:"email" json:"email" binding:"required,email"`
	Password    string `form:"password" json:"password" binding:"required,min=8,max=72"`
	Role        string `form:"role" json:"role" binding:"required,oneof=Student Recruiter"`
	PhoneNumber string `form:"phoneNumber" json:"phoneNumber" binding:"required,min=7,max=20"`
}

// LoginRequest carries an optional role; a mismatch fails like a wrong
// password.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// ProfileUpdateRequest only changes the fields that are sent.
type ProfileUpdateRequest struct {
	FullName    string `form:"fullname" json:"fullname" binding:"omitempty,max=100"`
	Email       string `form:"email" json:"email" binding:"omitempty,email"`
	PhoneNumber string `form:"phoneNumber" json:"phoneNumber" binding:"omitempty,min=7,max=20"`
	Bio         string `form:"bio" json:"bio" binding:"omitempty,max=1000"`
	Skills      string `form:"skills" json:"skills"` // comma separated
}
