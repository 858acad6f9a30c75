package dtos

type CompanyRegisterRequest struct {
	CompanyName string `json:"companyName" binding:"required,max=50"`
}

type CompanyUpdateRequest struct {
	Name        string `form:"name" json:"name" binding:"omitempty,max=50"`
	Description string `form:"description" json:"description"`
	Website     string `form:"website" json:"website" binding:"omitempty,url"`
	Location    string `form:"location" json:"location"`
}
