package dtos

// JobPostRequest is the body of POST /api/job/post.
type JobPostRequest struct {
	Title           string  `json:"title" binding:"required,max=120"`
	Description     string  `json:"description" binding:"required"`
	Requirements    string  `json:"requirements"` // comma separated
	Salary          Number  `json:"salary" binding:"gte=0"`
	Location        string  `json:"location" binding:"required"`
	JobType         string  `json:"jobType" binding:"required"`
	ExperienceLevel Integer `json:"experience" binding:"gte=0"`
	OpenPositions   Integer `json:"position" binding:"required,gte=1"`
	CompanyID       string  `json:"companyId" binding:"required,uuid"`
}

// JobFilter narrows GET /api/job/get.
type JobFilter struct {
	Keyword  string `form:"keyword"`
	Location string `form:"location"`
	JobType  string `form:"jobType"`
}
