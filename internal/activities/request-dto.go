package activities

type SignupQuery struct {
	Email string `form:"email" validate:"required"`
}

type ActivityPath struct {
	Name string `uri:"name" validate:"required"`
}

type UnregisterPath struct {
	Name  string `uri:"name" validate:"required"`
	Email string `uri:"email" validate:"required"`
}
