package dto

type RegisterRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,max=255"`
	Image string `json:"image" binding:"omitempty,url"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Image    string `json:"image" binding:"omitempty,url"`
	Timezone string `json:"timezone" binding:"omitempty,max=64"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
