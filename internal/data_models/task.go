package dto

type LocationRequest struct {
	Address string  `json:"address" validate:"max=255"`
	Lat     float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng     float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type CreateTaskRequest struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"required,max=1000"`
	Category    string          `json:"category" validate:"required"`
	Budget      int             `json:"budget" validate:"required,gt=0"`
	Urgency     string          `json:"urgency"`
	Location    LocationRequest `json:"location"`
}

type ApplyRequest struct {
	Message        string `json:"message" validate:"max=500"`
	ProposedBudget *int   `json:"proposedBudget" validate:"omitempty,gt=0"`
}

type RateWorkerRequest struct {
	Stars  int    `json:"stars" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"max=500"`
}

type TaskListQuery struct {
	Status   string `query:"status"`
	Category string `query:"category"`
	Urgency  string `query:"urgency"`
	Search   string `query:"search"`
}
