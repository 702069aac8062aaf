package selection

type ToggleRequest struct {
	Seat string `json:"seat" binding:"required,max=8"`
}
